package cart

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Manager はユーザーごとの Store を持つ。初回アクセス時にリモートから読み込む。
type Manager struct {
	docs repository.DocumentStore
	w    Writer
	log  *zap.Logger

	mu     sync.Mutex
	stores map[int64]*Store
}

func NewManager(docs repository.DocumentStore, w Writer, log *zap.Logger) *Manager {
	return &Manager{
		docs:   docs,
		w:      w,
		log:    log,
		stores: make(map[int64]*Store),
	}
}

// Get は読み込みに失敗しても空のカートを返す（ログのみ）。
func (m *Manager) Get(ctx context.Context, userID int64) *Store {
	m.mu.Lock()
	s, ok := m.stores[userID]
	m.mu.Unlock()
	if ok {
		return s
	}

	items := m.load(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	//読み込み中に他のリクエストが作っていたらそちらを使う
	if s, ok := m.stores[userID]; ok {
		return s
	}
	s = NewStore(userID, items, m.w)
	m.stores[userID] = s
	return s
}

// Forget はメモリ上のカートを捨てる（次回は再読み込み）。
func (m *Manager) Forget(userID int64) {
	m.mu.Lock()
	delete(m.stores, userID)
	m.mu.Unlock()
}

func (m *Manager) load(ctx context.Context, userID int64) []model.CartItem {
	docs, err := m.docs.List(ctx, Collection, docPrefix(userID))
	if err != nil {
		m.log.Error("cart load failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}

	items := make([]model.CartItem, 0, len(docs))
	for id, raw := range docs {
		var it model.CartItem
		if err := json.Unmarshal(raw, &it); err != nil {
			m.log.Warn("cart document skipped", zap.String("doc_id", id), zap.Error(err))
			continue
		}
		if it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product.ID < items[j].Product.ID })
	return items
}

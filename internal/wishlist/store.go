// Package wishlist はお気に入りの状態と、リモート→ローカルの二段構えの永続化を扱う。
package wishlist

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
)

// Store は1ユーザー分のお気に入り。商品は重複しない。
// 保存はロック内で行い、同じ商品の追加/削除がリモートで入れ替わらないようにする。
type Store struct {
	mu      sync.Mutex
	userID  int64
	items   []model.WishlistItem
	backend *TieredBackend
	source  Tier
}

// Add は既にあれば何もしない（false）。
func (s *Store) Add(ctx context.Context, p model.ProductSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return false
	}
	item := model.WishlistItem{Product: p}
	s.items = append(s.items, item)
	s.source = s.backend.Added(ctx, s.userID, item, s.copyItems())
	return true
}

// Remove は無ければ何もしない。
func (s *Store) Remove(ctx context.Context, productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.source = s.backend.Removed(ctx, s.userID, productID, s.copyItems())
	return true
}

func (s *Store) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Items() []model.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Source は直近の読み書きがどちらの層で行われたか
func (s *Store) Source() Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Store) copyItems() []model.WishlistItem {
	out := make([]model.WishlistItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(productID int64) int {
	for i, it := range s.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Manager はユーザーごとの Store を持つ。
type Manager struct {
	backend *TieredBackend

	mu     sync.Mutex
	stores map[int64]*Store
}

func NewManager(backend *TieredBackend) *Manager {
	return &Manager{backend: backend, stores: make(map[int64]*Store)}
}

func (m *Manager) Get(ctx context.Context, userID int64) *Store {
	m.mu.Lock()
	s, ok := m.stores[userID]
	m.mu.Unlock()
	if ok {
		return s
	}

	items, tier := m.backend.Load(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[userID]; ok {
		return s
	}
	s = &Store{userID: userID, items: items, backend: m.backend, source: tier}
	m.stores[userID] = s
	return s
}

// Forget はセッション終了時にメモリから外す（保存済みの内容はそのまま）
func (m *Manager) Forget(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, userID)
}

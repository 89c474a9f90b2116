// Package cart はユーザーごとのカート状態と、その永続化を扱う。
package cart

import (
	"sync"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Writer はカートの変更をリモートへ書き込む。呼び出し側は結果を待たない。
type Writer interface {
	PutItem(userID int64, item model.CartItem)
	DeleteItem(userID int64, productID int64)
	// 明細ごとに1件ずつ順番に削除する
	DeleteItems(userID int64, productIDs []int64)
}

// Store は1ユーザー分のカート。メモリ上の状態を先に更新してから書き込みを投げる。
// 書き込みはロックを持ったままキューに積むので、リモートへの反映順は更新順と一致する。
type Store struct {
	mu     sync.Mutex
	userID int64
	items  []model.CartItem
	w      Writer
}

func NewStore(userID int64, items []model.CartItem, w Writer) *Store {
	cp := make([]model.CartItem, len(items))
	copy(cp, items)
	return &Store{userID: userID, items: cp, w: w}
}

func (s *Store) UserID() int64 { return s.userID }

// Add は同一商品なら数量を加算、無ければ末尾に追加する。qty<1 は1扱い。
func (s *Store) Add(p model.ProductSnapshot, qty int64) model.CartItem {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out model.CartItem
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Quantity += qty
		out = s.items[i]
	} else {
		out = model.CartItem{Product: p, Quantity: qty}
		s.items = append(s.items, out)
	}
	s.w.PutItem(s.userID, out)
	return out
}

// Remove は存在しないIDなら何もしない。
func (s *Store) Remove(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.w.DeleteItem(s.userID, productID)
	return true
}

// SetQuantity は qty<=0 なら Remove と同じ。
func (s *Store) SetQuantity(productID int64, qty int64) bool {
	if qty <= 0 {
		return s.Remove(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.items[i].Quantity = qty
	s.w.PutItem(s.userID, s.items[i])
	return true
}

// Clear はメモリを空にしてから明細ごとの削除を投げる。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.items))
	for _, it := range s.items {
		ids = append(ids, it.Product.ID)
	}
	s.items = nil
	if len(ids) > 0 {
		s.w.DeleteItems(s.userID, ids)
	}
}

// Settle は支払い済みの明細をカートから差し引く。
// 支払い後に増えた分は残し、0以下になった行は削除する。
func (s *Store) Settle(paid []model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []int64
	for _, p := range paid {
		i := s.indexOf(p.Product.ID)
		if i < 0 {
			continue
		}
		if left := s.items[i].Quantity - p.Quantity; left > 0 {
			s.items[i].Quantity = left
			s.w.PutItem(s.userID, s.items[i])
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		removed = append(removed, p.Product.ID)
	}
	if len(removed) > 0 {
		s.w.DeleteItems(s.userID, removed)
	}
}

func (s *Store) Get(productID int64) (model.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i], true
	}
	return model.CartItem{}, false
}

func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) TotalItems() int64 {
	return Totals(s.Items()).Items
}

func (s *Store) TotalPrice() decimal.Decimal {
	return Totals(s.Items()).Price
}

func (s *Store) indexOf(productID int64) int {
	for i, it := range s.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// 合計（点数と金額）
type Total struct {
	Items int64           `json:"total_items"`
	Price decimal.Decimal `json:"total_price"`
}

func Totals(items []model.CartItem) Total {
	t := Total{Price: decimal.Zero}
	for _, it := range items {
		t.Items += it.Quantity
		t.Price = t.Price.Add(it.LineTotal())
	}
	return t
}

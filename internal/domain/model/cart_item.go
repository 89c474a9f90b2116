package model

import "github.com/shopspring/decimal"

// カートに入れた時点の商品情報
type ProductSnapshot struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Category Category        `json:"category"`
	Stock    int64           `json:"stock"`
}

func SnapshotOf(p Product) ProductSnapshot {
	return ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Category: p.Category,
		Stock:    p.Stock,
	}
}

// カートの明細（ユーザー×商品で一意）
type CartItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
}

func (it CartItem) LineTotal() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(it.Quantity))
}

// お気に入り（ユーザー×商品で一意）
type WishlistItem struct {
	Product ProductSnapshot `json:"product"`
}

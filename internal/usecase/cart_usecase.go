package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 在庫チェックはここで行い、Storeはメモリ上の状態と保存だけを持ちます。
type CartUsecase struct {
	carts       *cart.Manager
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts *cart.Manager, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
	}
}

type CartResponse struct {
	Items      []model.CartItem `json:"items"`
	TotalItems int64            `json:"total_items"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

func toCartResponse(items []model.CartItem) CartResponse {
	t := cart.Totals(items)
	return CartResponse{
		Items:      items,
		TotalItems: t.Items,
		TotalPrice: t.Price,
	}
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return toCartResponse(u.carts.Get(ctx, userID).Items()), nil
}

// AddItem は既にあれば数量を加算（合計が在庫を超えたら400）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	p, err := u.findActive(ctx, in.ProductID)
	if err != nil {
		return CartResponse{}, err
	}

	s := u.carts.Get(ctx, userID)
	current := int64(0)
	if it, ok := s.Get(p.ID); ok {
		current = it.Quantity
	}
	if current+qty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	s.Add(model.SnapshotOf(p), qty)
	return toCartResponse(s.Items()), nil
}

// UpdateQuantity は0以下なら削除。カートに無い商品は何もしない。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s := u.carts.Get(ctx, userID)
	if _, ok := s.Get(productID); !ok || qty <= 0 {
		s.SetQuantity(productID, qty)
		return toCartResponse(s.Items()), nil
	}

	p, err := u.findActive(ctx, productID)
	if err != nil {
		return CartResponse{}, err
	}
	if qty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	s.SetQuantity(productID, qty)
	return toCartResponse(s.Items()), nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s := u.carts.Get(ctx, userID)
	s.Remove(productID)
	return toCartResponse(s.Items()), nil
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	s := u.carts.Get(ctx, userID)
	s.Clear()
	return toCartResponse(s.Items()), nil
}

func (u *CartUsecase) findActive(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/wishlist"
)

type WishlistUsecase struct {
	lists       *wishlist.Manager
	productRepo repo.ProductRepository
}

func NewWishlistUsecase(lists *wishlist.Manager, productRepo repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{lists: lists, productRepo: productRepo}
}

type WishlistResponse struct {
	Items  []model.WishlistItem `json:"items"`
	Source wishlist.Tier        `json:"source"`
}

func toWishlistResponse(s *wishlist.Store) WishlistResponse {
	return WishlistResponse{Items: s.Items(), Source: s.Source()}
}

func (u *WishlistUsecase) Get(ctx context.Context, userID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return toWishlistResponse(u.lists.Get(ctx, userID)), nil
}

// Add は同じ商品を2回入れても1件のまま
func (u *WishlistUsecase) Add(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return WishlistResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s := u.lists.Get(ctx, userID)
	s.Add(ctx, model.SnapshotOf(p))
	return toWishlistResponse(s), nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s := u.lists.Get(ctx, userID)
	s.Remove(ctx, productID)
	return toWishlistResponse(s), nil
}

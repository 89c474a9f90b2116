package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/repository/repotest"
	"storefront/internal/usecase"
	"storefront/internal/wishlist"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCartManager(t *testing.T) *cart.Manager {
	return cart.NewManager(repotest.NewDocStore(), nopWriter{}, zaptest.NewLogger(t))
}

func seedProducts(pRepo *ProductRepoMock) {
	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(10), Stock: 5, IsActive: true}, nil)
	pRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, Name: "B", Price: decimal.NewFromInt(5), Stock: 5, IsActive: true}, nil)
	pRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Name: "C", Stock: 5, IsActive: false}, nil)
	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)
}

func TestCartUsecase_TotalsScenario(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	uc := usecase.NewCartUsecase(newCartManager(t), pRepo)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.TotalItems)
	assert.True(t, out.TotalPrice.Equal(decimal.NewFromInt(25)))
}

func TestCartUsecase_StockExceeded(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	uc := usecase.NewCartUsecase(newCartManager(t), pRepo)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 1, Quantity: 4})
	require.NoError(t, err)

	//既存4 + 2 は在庫5を超える
	_, err = uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 1, Quantity: 2})
	assertHTTPError(t, err, http.StatusBadRequest, "stock exceeded")

	_, err = uc.UpdateQuantity(ctx, 1, 1, 6)
	assertHTTPError(t, err, http.StatusBadRequest, "stock exceeded")

	out, err := uc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.TotalItems)
}

func TestCartUsecase_UnavailableProducts(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	uc := usecase.NewCartUsecase(newCartManager(t), pRepo)

	_, err := uc.AddItem(context.Background(), 1, usecase.AddCartInput{ProductID: 3})
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.AddItem(context.Background(), 1, usecase.AddCartInput{ProductID: 99})
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.AddItem(context.Background(), 0, usecase.AddCartInput{ProductID: 1})
	assertHTTPError(t, err, http.StatusUnauthorized, "unauthorized")
}

func TestCartUsecase_UpdateQuantityZeroRemoves(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	uc := usecase.NewCartUsecase(newCartManager(t), pRepo)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 1})
	require.NoError(t, err)

	out, err := uc.UpdateQuantity(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	//カートに無い商品は何もしない
	out, err = uc.UpdateQuantity(ctx, 1, 2, 3)
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	out, err = uc.RemoveItem(ctx, 1, 42)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_Clear(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	uc := usecase.NewCartUsecase(newCartManager(t), pRepo)
	ctx := context.Background()

	_, _ = uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 1})
	_, _ = uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 2})

	out, err := uc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.TotalPrice.IsZero())
}

func TestWishlistUsecase_AddIsIdempotent(t *testing.T) {
	pRepo := new(ProductRepoMock)
	seedProducts(pRepo)
	backend := wishlist.NewTieredBackend(repotest.NewDocStore(), newLocal(t), zaptest.NewLogger(t))
	uc := usecase.NewWishlistUsecase(wishlist.NewManager(backend), pRepo)
	ctx := context.Background()

	_, err := uc.Add(ctx, 1, 1)
	require.NoError(t, err)
	out, err := uc.Add(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, wishlist.TierRemote, out.Source)

	_, err = uc.Add(ctx, 1, 3)
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	out, err = uc.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

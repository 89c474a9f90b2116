package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	assert.Equal(t, msg, he.Message)
}

func newProductUC(t *testing.T, p *ProductRepoMock, r *ReviewRepoMock, a *AuditRepoMock, cache usecase.ProductListCache, search usecase.ProductSearchIndex) *usecase.ProductUsecase {
	tx := &TxManagerStub{products: p, audit: a}
	return usecase.NewProductUsecase(p, r, tx, cache, search, zaptest.NewLogger(t))
}

func TestProductUsecase_ListPublicProducts_Validation(t *testing.T) {
	uc := newProductUC(t, new(ProductRepoMock), new(ReviewRepoMock), new(AuditRepoMock), nil, nil)
	ctx := context.Background()

	_, err := uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 0, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")

	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 101})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid limit")

	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20, Category: "tools"})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid category")

	min, max := decimal.NewFromInt(10), decimal.NewFromInt(5)
	_, err = uc.ListPublicProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20, MinPrice: &min, MaxPrice: &max})
	assertHTTPError(t, err, http.StatusBadRequest, "min_price must be <= max_price")
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), nil, nil)

	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "tomato", Category: model.CategorySeeds, Sort: "new"}
	pRepo.On("ListPublic", mock.Anything, q).Return([]model.Product{{ID: 1, Name: "Tomato", IsActive: true}}, int64(1), nil)

	out, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, Q: "  tomato ", Category: "seeds", Sort: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Items, 1)
	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListPublicProducts_CacheHitSkipsDB(t *testing.T) {
	pRepo := new(ProductRepoMock)
	cache := new(CacheMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), cache, nil)

	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*usecase.ProductListOutput)
		out.Total = 42
	}).Return(true, nil)

	out, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.Total)
	pRepo.AssertNotCalled(t, "ListPublic", mock.Anything, mock.Anything)
}

func TestProductUsecase_ListPublicProducts_CacheErrorIgnored(t *testing.T) {
	pRepo := new(ProductRepoMock)
	cache := new(CacheMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), cache, nil)

	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	pRepo.On("ListPublic", mock.Anything, mock.Anything).Return([]model.Product{}, int64(0), nil)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20})
	assert.NoError(t, err)
}

func TestProductUsecase_Search_Empty(t *testing.T) {
	uc := newProductUC(t, new(ProductRepoMock), new(ReviewRepoMock), new(AuditRepoMock), nil, nil)

	_, err := uc.SearchProducts(context.Background(), "   ", 1, 20)
	assertHTTPError(t, err, http.StatusBadRequest, "empty search")
}

func TestProductUsecase_Search_KeepsEngineOrder(t *testing.T) {
	pRepo := new(ProductRepoMock)
	search := new(SearchMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), nil, search)

	search.On("Search", mock.Anything, "neem", 0, 20).Return([]int64{3, 1}, int64(2), nil)
	pRepo.On("FindByIDs", mock.Anything, []int64{3, 1}).Return([]model.Product{{ID: 1}, {ID: 3}}, nil)

	out, err := uc.SearchProducts(context.Background(), "neem", 1, 20)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(3), out.Items[0].ID)
	assert.Equal(t, int64(1), out.Items[1].ID)
}

func TestProductUsecase_Search_FallsBackToDB(t *testing.T) {
	pRepo := new(ProductRepoMock)
	search := new(SearchMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), nil, search)

	search.On("Search", mock.Anything, "neem", 0, 20).Return(nil, int64(0), errors.New("es down"))
	pRepo.On("ListPublic", mock.Anything, repo.ProductListQuery{Page: 1, Limit: 20, Q: "neem"}).
		Return([]model.Product{{ID: 9}}, int64(1), nil)

	out, err := uc.SearchProducts(context.Background(), "neem", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	pRepo.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail(t *testing.T) {
	pRepo := new(ProductRepoMock)
	rRepo := new(ReviewRepoMock)
	uc := newProductUC(t, pRepo, rRepo, new(AuditRepoMock), nil, nil)

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: true}, nil)
	pRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, IsActive: false}, nil)
	pRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Product{}, repo.ErrNotFound)
	rRepo.On("ListByProductID", mock.Anything, int64(1)).Return([]model.Review{{ID: 5, Rating: 4}}, nil)

	p, err := uc.GetProductDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, p.Reviews, 1)

	_, err = uc.GetProductDetail(context.Background(), 2)
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.GetProductDetail(context.Background(), 3)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

func TestProductUsecase_AdminCreateProduct_InvalidCategory(t *testing.T) {
	uc := newProductUC(t, new(ProductRepoMock), new(ReviewRepoMock), new(AuditRepoMock), nil, nil)

	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminProductInput{
		Name: "Spade", Price: decimal.NewFromInt(3), Category: "tools",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid category")
}

func TestProductUsecase_AdminCreateProduct_InvalidatesAndIndexes(t *testing.T) {
	pRepo := new(ProductRepoMock)
	cache := new(CacheMock)
	search := new(SearchMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), cache, search)

	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Okra seeds" && p.Category == model.CategorySeeds
	})).Return(model.Product{ID: 11, Name: "Okra seeds"}, nil)
	cache.On("Invalidate", mock.Anything).Return(nil)
	search.On("Index", mock.Anything, mock.MatchedBy(func(p model.Product) bool { return p.ID == 11 })).Return(errors.New("es down"))

	p, err := uc.AdminCreateProduct(context.Background(), 1, usecase.AdminProductInput{
		Name: " Okra seeds ", Price: decimal.RequireFromString("2.50"), Category: "seeds", Stock: 10, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	cache.AssertExpectations(t)
	search.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_WritesAudit(t *testing.T) {
	pRepo := new(ProductRepoMock)
	aRepo := new(AuditRepoMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), aRepo, nil, nil)

	pRepo.On("FindByID", mock.Anything, int64(7)).Return(model.Product{ID: 7, Stock: 3}, nil)
	pRepo.On("SetStock", mock.Anything, int64(7), int64(10)).Return(nil)
	aRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			l.ResourceID == 7 &&
			l.BeforeJSON == `{"stock":3}` &&
			l.AfterJSON == `{"stock":10}`
	})).Return(nil)

	err := uc.AdminUpdateInventory(context.Background(), 1, 7, 10)
	require.NoError(t, err)
	pRepo.AssertExpectations(t)
	aRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminUpdateInventory_NotFound(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), new(AuditRepoMock), nil, nil)

	pRepo.On("FindByID", mock.Anything, int64(7)).Return(model.Product{}, repo.ErrNotFound)

	err := uc.AdminUpdateInventory(context.Background(), 1, 7, 10)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

func TestProductUsecase_AdminDeleteProduct(t *testing.T) {
	pRepo := new(ProductRepoMock)
	aRepo := new(AuditRepoMock)
	search := new(SearchMock)
	uc := newProductUC(t, pRepo, new(ReviewRepoMock), aRepo, nil, search)

	pRepo.On("SoftDelete", mock.Anything, int64(4)).Return(nil)
	aRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteProduct && l.ResourceID == 4
	})).Return(nil)
	search.On("Delete", mock.Anything, int64(4)).Return(nil)

	require.NoError(t, uc.AdminDeleteProduct(context.Background(), 1, 4))
	search.AssertExpectations(t)
}

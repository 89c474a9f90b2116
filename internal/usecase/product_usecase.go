package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 一覧キャッシュ（nilなら使わない）
type ProductListCache interface {
	Get(ctx context.Context, query any, v any) (bool, error)
	Set(ctx context.Context, query any, v any) error
	Invalidate(ctx context.Context) error
}

// 全文検索（nilならDB検索のみ）
type ProductSearchIndex interface {
	Search(ctx context.Context, q string, from int, size int) ([]int64, int64, error)
	Index(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	reviewRepo  repo.ReviewRepository
	tx          repo.TransactionManager
	cache       ProductListCache
	search      ProductSearchIndex
	log         *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	reviewRepo repo.ReviewRepository,
	tx repo.TransactionManager,
	cache ProductListCache,
	search ProductSearchIndex,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		tx:          tx,
		cache:       cache,
		search:      search,
		log:         log,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.Category != "" && !model.Category(in.Category).Valid() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	query := repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: model.Category(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	}

	//キャッシュ（失敗はログのみ）
	if u.cache != nil {
		var cached ProductListOutput
		hit, err := u.cache.Get(ctx, query, &cached)
		if err != nil {
			u.log.Warn("product cache get failed", zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	items, total, err := u.productRepo.ListPublic(ctx, query)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}
	if u.cache != nil {
		if err := u.cache.Set(ctx, query, out); err != nil {
			u.log.Warn("product cache set failed", zap.Error(err))
		}
	}
	return out, nil
}

// 全文検索。検索エンジンが落ちていればDBのILIKEで代替する。
func (u *ProductUsecase) SearchProducts(ctx context.Context, q string, page int, limit int) (ProductListOutput, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "empty search")
	}
	if page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	if u.search != nil {
		ids, total, err := u.search.Search(ctx, q, (page-1)*limit, limit)
		if err == nil {
			items, err := u.productsInOrder(ctx, ids)
			if err != nil {
				return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
		}
		u.log.Error("search failed, falling back to db", zap.Error(err))
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:  page,
		Limit: limit,
		Q:     q,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 検索エンジンの並び順を保つ
func (u *ProductUsecase) productsInOrder(ctx context.Context, ids []int64) ([]model.Product, error) {
	found, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rank := make(map[int64]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(found, func(i, j int) bool { return rank[found[i].ID] < rank[found[j].ID] })
	return found, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.activeProduct(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}

	reviews, err := u.reviewRepo.ListByProductID(ctx, productID)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	p.Reviews = reviews
	return p, nil
}

// 公開中の商品だけ返す（カート・お気に入り・レビューでも使う）
func (u *ProductUsecase) activeProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

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

type AdminProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	Stock       int64
	IsActive    bool
}

func validateProductInput(in AdminProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if !model.Category(in.Category).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    model.Category(in.Category),
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.productChanged(ctx, p)
	return p, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validateProductInput(in); err != nil {
		return err
	}

	p := model.Product{
		ID:          productID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    model.Category(in.Category),
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		UpdatedAt:   time.Now(),
	}
	err := u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.productChanged(ctx, p)
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			CreatedAt:    time.Now(),
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			u.log.Warn("product cache invalidate failed", zap.Error(err))
		}
	}
	if u.search != nil {
		if err := u.search.Delete(ctx, productID); err != nil {
			u.log.Error("failed to delete product from search", zap.Int64("product_id", productID), zap.Error(err))
		}
	}
	return nil
}

func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		//在庫の現在値を更新
		if err := r.Products().SetStock(ctx, productID, newStock); err != nil {
			return err
		}

		//監査ログを作成（在庫更新）
		//「誰が」「何を」「どの対象に」「どう変えたか」を残す
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    time.Now(),
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			u.log.Warn("product cache invalidate failed", zap.Error(err))
		}
	}
	return nil
}

// キャッシュの世代を上げて検索インデックスを更新（どちらも失敗はログのみ）
func (u *ProductUsecase) productChanged(ctx context.Context, p model.Product) {
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			u.log.Warn("product cache invalidate failed", zap.Error(err))
		}
	}
	if u.search != nil {
		if err := u.search.Index(ctx, p); err != nil {
			u.log.Error("failed to index product", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}
}

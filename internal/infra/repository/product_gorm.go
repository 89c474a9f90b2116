package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品の一覧。件数は絞り込み後、ページング前で数える
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(publicProducts(q))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var products []model.Product
	err := base.Scopes(productOrder(q.Sort)).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

// 公開中 + キーワード/カテゴリ/価格帯
func publicProducts(q repo.ProductListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if kw := strings.TrimSpace(q.Q); kw != "" {
			like := "%" + escapeLike(kw) + "%"
			db = db.Where("(name ILIKE ? OR description ILIKE ?)", like, like)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.MinPrice != nil {
			db = db.Where("price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("price <= ?", *q.MaxPrice)
		}
		return db
	}
}

// 同値のときはidで順序を固定
func productOrder(sort string) func(*gorm.DB) *gorm.DB {
	order := map[string]string{
		"price_asc":  "price ASC, id ASC",
		"price_desc": "price DESC, id DESC",
	}[sort]
	if order == "" {
		order = "created_at DESC, id DESC"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

// 削除済み（deleted_at）はgormが除外する
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 検索結果のIDを商品に戻す（順序は呼び出し側で揃える）
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Find(&products).Error
	return products, err
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// is_active=falseもゼロ値で落とさないようmapで更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"category":    p.Category,
		"stock":       p.Stock,
		"is_active":   p.IsActive,
		"updated_at":  p.UpdatedAt,
	}))
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}

func (r *ProductGormRepository) SetStock(ctx context.Context, id int64, stock int64) error {
	return affected(r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("stock", stock))
}

package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type VideoGormRepository struct {
	db *gorm.DB
}

func NewVideoGormRepository(db *gorm.DB) *VideoGormRepository {
	return &VideoGormRepository{db: db}
}

func (r *VideoGormRepository) List(ctx context.Context, onlyActive bool) ([]model.Video, error) {
	var out []model.Video
	if err := listMedia(r.db.WithContext(ctx), onlyActive).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VideoGormRepository) FindByID(ctx context.Context, id int64) (model.Video, error) {
	var v model.Video
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return model.Video{}, translate(err)
	}
	return v, nil
}

func (r *VideoGormRepository) Create(ctx context.Context, v model.Video) (model.Video, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Video{}, translate(err)
	}
	return v, nil
}

func (r *VideoGormRepository) Update(ctx context.Context, v model.Video) error {
	return updateMedia(r.db.WithContext(ctx).Model(&model.Video{}), v.ID, map[string]interface{}{
		"title":      v.Title,
		"url":        v.URL,
		"sort_order": v.SortOrder,
		"is_active":  v.IsActive,
	})
}

func (r *VideoGormRepository) Delete(ctx context.Context, id int64) error {
	return deleteMedia(r.db.WithContext(ctx), &model.Video{}, id)
}

type BannerGormRepository struct {
	db *gorm.DB
}

func NewBannerGormRepository(db *gorm.DB) *BannerGormRepository {
	return &BannerGormRepository{db: db}
}

func (r *BannerGormRepository) List(ctx context.Context, onlyActive bool) ([]model.Banner, error) {
	var out []model.Banner
	if err := listMedia(r.db.WithContext(ctx), onlyActive).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BannerGormRepository) FindByID(ctx context.Context, id int64) (model.Banner, error) {
	var b model.Banner
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return model.Banner{}, translate(err)
	}
	return b, nil
}

func (r *BannerGormRepository) Create(ctx context.Context, b model.Banner) (model.Banner, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Banner{}, translate(err)
	}
	return b, nil
}

func (r *BannerGormRepository) Update(ctx context.Context, b model.Banner) error {
	return updateMedia(r.db.WithContext(ctx).Model(&model.Banner{}), b.ID, map[string]interface{}{
		"title":      b.Title,
		"image_url":  b.ImageURL,
		"link_url":   b.LinkURL,
		"sort_order": b.SortOrder,
		"is_active":  b.IsActive,
	})
}

func (r *BannerGormRepository) Delete(ctx context.Context, id int64) error {
	return deleteMedia(r.db.WithContext(ctx), &model.Banner{}, id)
}

// 表示順→id順
func listMedia(db *gorm.DB, onlyActive bool) *gorm.DB {
	if onlyActive {
		db = db.Where("is_active = ?", true)
	}
	return db.Order("sort_order asc").Order("id asc")
}

func updateMedia(db *gorm.DB, id int64, values map[string]interface{}) error {
	return affected(db.Where("id = ?", id).Updates(values))
}

func deleteMedia(db *gorm.DB, m any, id int64) error {
	return affected(db.Delete(m, id))
}

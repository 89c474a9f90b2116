package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type VideoRepository interface {
	List(ctx context.Context, onlyActive bool) ([]model.Video, error)
	FindByID(ctx context.Context, id int64) (model.Video, error)
	Create(ctx context.Context, v model.Video) (model.Video, error)
	Update(ctx context.Context, v model.Video) error
	Delete(ctx context.Context, id int64) error
}

type BannerRepository interface {
	List(ctx context.Context, onlyActive bool) ([]model.Banner, error)
	FindByID(ctx context.Context, id int64) (model.Banner, error)
	Create(ctx context.Context, b model.Banner) (model.Banner, error)
	Update(ctx context.Context, b model.Banner) error
	Delete(ctx context.Context, id int64) error
}

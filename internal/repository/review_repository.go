package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// レビューは追記のみ
type ReviewRepository interface {
	Create(ctx context.Context, r model.Review) (model.Review, error)
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)
}

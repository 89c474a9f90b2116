package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 決済試行の保存・取得
type CheckoutAttemptRepository interface {
	Create(ctx context.Context, a model.CheckoutAttempt) error
	FindByID(ctx context.Context, id string) (model.CheckoutAttempt, error)
	// 全体を置き換えて保存
	Save(ctx context.Context, a model.CheckoutAttempt) error
}

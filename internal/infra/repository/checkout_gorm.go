package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type checkoutAttemptGormRepository struct {
	db *gorm.DB
}

func NewCheckoutAttemptGormRepository(db *gorm.DB) repo.CheckoutAttemptRepository {
	return &checkoutAttemptGormRepository{db: db}
}

func (r *checkoutAttemptGormRepository) Create(ctx context.Context, a model.CheckoutAttempt) error {
	return translate(r.db.WithContext(ctx).Create(&a).Error)
}

func (r *checkoutAttemptGormRepository) FindByID(ctx context.Context, id string) (model.CheckoutAttempt, error) {
	var a model.CheckoutAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return model.CheckoutAttempt{}, translate(err)
	}
	return a, nil
}

// Save はSelectで列を固定する（ゼロ値も書く、itemsはjsonシリアライザ経由）
func (r *checkoutAttemptGormRepository) Save(ctx context.Context, a model.CheckoutAttempt) error {
	return affected(r.db.WithContext(ctx).Model(&a).
		Select("currency", "state", "script_url", "provider_order_id", "amount", "items", "failure_reason", "updated_at").
		Updates(&a))
}

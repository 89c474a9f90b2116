package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/infra/localstore"
	repo "storefront/internal/repository"
)

// 注文履歴はローカルKVにユーザー単位で丸ごと保存する
type OrderUsecase struct {
	local repo.LocalStore

	mu sync.Mutex
}

func NewOrderUsecase(local repo.LocalStore) *OrderUsecase {
	return &OrderUsecase{local: local}
}

func orderHistoryKey(userID int64) string {
	return fmt.Sprintf("orders:%d", userID)
}

// Append は決済成功時に1件追加する
func (u *OrderUsecase) Append(userID int64, rec model.OrderRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var records []model.OrderRecord
	if _, err := localstore.GetJSON(u.local, orderHistoryKey(userID), &records); err != nil {
		return err
	}
	records = append(records, rec)
	return localstore.PutJSON(u.local, orderHistoryKey(userID), records)
}

// List は新しい順
func (u *OrderUsecase) List(ctx context.Context, userID int64) ([]model.OrderRecord, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var records []model.OrderRecord
	if _, err := localstore.GetJSON(u.local, orderHistoryKey(userID), &records); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	out := make([]model.OrderRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

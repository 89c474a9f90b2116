package usecase

import (
	"context"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/promotion"
	"storefront/internal/wishlist"
)

// SessionUsecase はログイン〜ログアウトの間だけ生きるもの（プロモーションのタイマー、メモリ上のカート）を扱う
type SessionUsecase struct {
	promotions *promotion.Scheduler
	carts      *cart.Manager
	lists      *wishlist.Manager
}

func NewSessionUsecase(promotions *promotion.Scheduler, carts *cart.Manager, lists *wishlist.Manager) *SessionUsecase {
	return &SessionUsecase{promotions: promotions, carts: carts, lists: lists}
}

type SessionStartResponse struct {
	ScheduledPromotions []string `json:"scheduled_promotions"`
}

// Start はまだ表示していないプロモーションのタイマーを張る。何度呼んでもよい。
func (u *SessionUsecase) Start(ctx context.Context, userID int64) (SessionStartResponse, error) {
	if userID <= 0 {
		return SessionStartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return SessionStartResponse{ScheduledPromotions: u.promotions.Schedule(ctx, userID)}, nil
}

func (u *SessionUsecase) Pending(userID int64) []string {
	return u.promotions.Pending(userID)
}

// End はタイマーを止めてメモリ上の状態を捨てる（保存済みのものは残る）
func (u *SessionUsecase) End(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	u.promotions.Stop(userID)
	u.carts.Forget(userID)
	u.lists.Forget(userID)
	return nil
}

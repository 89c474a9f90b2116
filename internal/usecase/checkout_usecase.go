package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 決済結果をトーストで伝える
type Toaster interface {
	Toast(userID int64, level model.ToastLevel, message string)
}

// CheckoutUsecase は決済1回分の状態遷移を管理する。
// idle → scriptLoading → scriptReady → orderCreating → awaitingApproval → capturing → 終端
type CheckoutUsecase struct {
	attempts        repo.CheckoutAttemptRepository
	providers       payment.Registry
	carts           *cart.Manager
	orders          *OrderUsecase
	toaster         Toaster
	successRedirect string
	log             *zap.Logger
	now             func() time.Time

	// 同じ試行への並行操作を直列化（試行IDのハッシュで固定数に振り分ける）
	locks [checkoutLockShards]sync.Mutex
}

const checkoutLockShards = 64

func NewCheckoutUsecase(
	attempts repo.CheckoutAttemptRepository,
	providers payment.Registry,
	carts *cart.Manager,
	orders *OrderUsecase,
	toaster Toaster,
	successRedirect string,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		attempts:        attempts,
		providers:       providers,
		carts:           carts,
		orders:          orders,
		toaster:         toaster,
		successRedirect: successRedirect,
		log:             log,
		now:             time.Now,
	}
}

type BeginCheckoutInput struct {
	Provider string
	Currency string
}

type ApproveResult struct {
	Attempt  model.CheckoutAttempt `json:"attempt"`
	Redirect string                `json:"redirect,omitempty"`
}

var errInvalidState = NewHTTPError(http.StatusConflict, "invalid state")

// Begin は試行を作り、SDKスクリプトのURLを返す（scriptLoading）。
func (u *CheckoutUsecase) Begin(ctx context.Context, userID int64, in BeginCheckoutInput) (model.CheckoutAttempt, error) {
	if userID <= 0 {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	provider, ok := u.providers.Get(model.PaymentProvider(strings.ToLower(strings.TrimSpace(in.Provider))))
	if !ok {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid provider")
	}
	if !payment.SupportedCurrency(in.Currency) {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid currency")
	}

	now := u.now()
	a := model.CheckoutAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Provider:  provider.Name(),
		Currency:  payment.NormalizeCurrency(in.Currency),
		State:     model.CheckoutIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.State = model.CheckoutScriptLoading
	a.ScriptURL = provider.ScriptURL(a.Currency)

	if err := u.attempts.Create(ctx, a); err != nil {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return a, nil
}

func (u *CheckoutUsecase) Get(ctx context.Context, userID int64, attemptID string) (model.CheckoutAttempt, error) {
	if userID <= 0 {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.load(ctx, userID, attemptID)
}

// ScriptLoaded はスクリプト読み込み結果を受ける。失敗なら failed。
func (u *CheckoutUsecase) ScriptLoaded(ctx context.Context, userID int64, attemptID string, ok bool) (model.CheckoutAttempt, error) {
	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return model.CheckoutAttempt{}, err
	}
	if a.State != model.CheckoutScriptLoading {
		return model.CheckoutAttempt{}, errInvalidState
	}
	if !ok {
		a.FailureReason = "script load failed"
		return a, u.transition(ctx, &a, model.CheckoutFailed)
	}
	return a, u.transition(ctx, &a, model.CheckoutScriptReady)
}

// ChangeCurrency は描画中（scriptLoading/scriptReady）なら作り直しになる。
func (u *CheckoutUsecase) ChangeCurrency(ctx context.Context, userID int64, attemptID string, currency string) (model.CheckoutAttempt, error) {
	if !payment.SupportedCurrency(currency) {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid currency")
	}

	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return model.CheckoutAttempt{}, err
	}
	if a.State != model.CheckoutScriptLoading && a.State != model.CheckoutScriptReady {
		return model.CheckoutAttempt{}, errInvalidState
	}
	provider, ok := u.providers.Get(a.Provider)
	if !ok {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid provider")
	}

	a.Currency = payment.NormalizeCurrency(currency)
	a.ScriptURL = provider.ScriptURL(a.Currency)
	a.ProviderOrderID = ""
	a.Items = nil
	return a, u.transition(ctx, &a, model.CheckoutScriptLoading)
}

// CreateOrder はカートのスナップショットから注文を作る。毎回新しい注文になる。
func (u *CheckoutUsecase) CreateOrder(ctx context.Context, userID int64, attemptID string) (model.CheckoutAttempt, error) {
	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return model.CheckoutAttempt{}, err
	}
	if a.State != model.CheckoutScriptReady {
		return model.CheckoutAttempt{}, errInvalidState
	}
	provider, ok := u.providers.Get(a.Provider)
	if !ok {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid provider")
	}

	//空カートは状態を変えずに400
	items := u.carts.Get(ctx, userID).Items()
	d, err := payment.NewOrderDescriptor(a.ID, items, a.Currency)
	if errors.Is(err, payment.ErrEmptyCart) {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if err != nil {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	a.Amount = d.Amount
	a.Items = items
	if err := u.transition(ctx, &a, model.CheckoutOrderCreating); err != nil {
		return model.CheckoutAttempt{}, err
	}

	orderID, err := provider.CreateOrder(ctx, d)
	if err != nil {
		u.log.Error("create order failed",
			zap.String("attempt_id", a.ID),
			zap.String("provider", string(a.Provider)),
			zap.Error(err),
		)
		return u.fail(ctx, a, "create order failed")
	}

	a.ProviderOrderID = orderID
	return a, u.transition(ctx, &a, model.CheckoutAwaitingApproval)
}

// Approve は承認後の確定。成功でカートを空にし履歴を残す。失敗ならカートはそのまま。
func (u *CheckoutUsecase) Approve(ctx context.Context, userID int64, attemptID string, approval payment.Approval) (ApproveResult, error) {
	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return ApproveResult{}, err
	}
	if a.State != model.CheckoutAwaitingApproval {
		return ApproveResult{}, errInvalidState
	}
	provider, ok := u.providers.Get(a.Provider)
	if !ok {
		return ApproveResult{}, NewHTTPError(http.StatusBadRequest, "invalid provider")
	}

	if err := u.transition(ctx, &a, model.CheckoutCapturing); err != nil {
		return ApproveResult{}, err
	}

	if err := provider.Capture(ctx, a.ProviderOrderID, approval); err != nil {
		u.log.Error("capture failed",
			zap.String("attempt_id", a.ID),
			zap.String("provider", string(a.Provider)),
			zap.Error(err),
		)
		if _, ferr := u.fail(ctx, a, "capture failed"); ferr != nil {
			return ApproveResult{}, ferr
		}
		return ApproveResult{}, NewHTTPError(http.StatusPaymentRequired, "payment failed")
	}

	if err := u.transition(ctx, &a, model.CheckoutSucceeded); err != nil {
		return ApproveResult{}, err
	}

	//記録・精算するのは注文作成時に金額を決めた明細だけ
	if err := u.orders.Append(userID, model.OrderRecord{
		AttemptID:       a.ID,
		Provider:        a.Provider,
		ProviderOrderID: a.ProviderOrderID,
		Amount:          a.Amount,
		Currency:        a.Currency,
		Items:           a.Items,
		CreatedAt:       u.now(),
	}); err != nil {
		u.log.Error("order history write failed", zap.String("attempt_id", a.ID), zap.Error(err))
	}
	u.carts.Get(ctx, userID).Settle(a.Items)
	u.toaster.Toast(userID, model.ToastSuccess, "Payment successful")

	return ApproveResult{Attempt: a, Redirect: u.successRedirect}, nil
}

// Cancel は購入者が閉じた（ondismiss）
func (u *CheckoutUsecase) Cancel(ctx context.Context, userID int64, attemptID string) (model.CheckoutAttempt, error) {
	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return model.CheckoutAttempt{}, err
	}
	if err := u.transition(ctx, &a, model.CheckoutCancelled); err != nil {
		return model.CheckoutAttempt{}, err
	}
	u.toaster.Toast(userID, model.ToastInfo, "Payment cancelled")
	return a, nil
}

// ReportError はSDK側のエラー（onError）
func (u *CheckoutUsecase) ReportError(ctx context.Context, userID int64, attemptID string, reason string) (model.CheckoutAttempt, error) {
	unlock := u.lock(attemptID)
	defer unlock()

	a, err := u.load(ctx, userID, attemptID)
	if err != nil {
		return model.CheckoutAttempt{}, err
	}
	if !a.State.CanTransitionTo(model.CheckoutFailed) {
		return model.CheckoutAttempt{}, errInvalidState
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "provider error"
	}
	return u.fail(ctx, a, reason)
}

func (u *CheckoutUsecase) fail(ctx context.Context, a model.CheckoutAttempt, reason string) (model.CheckoutAttempt, error) {
	a.FailureReason = reason
	if err := u.transition(ctx, &a, model.CheckoutFailed); err != nil {
		return model.CheckoutAttempt{}, err
	}
	u.toaster.Toast(a.UserID, model.ToastError, "Payment failed")
	return a, nil
}

// transition は遷移表に無ければ409
func (u *CheckoutUsecase) transition(ctx context.Context, a *model.CheckoutAttempt, next model.CheckoutState) error {
	if !a.State.CanTransitionTo(next) {
		return errInvalidState
	}
	a.State = next
	a.UpdatedAt = u.now()
	if err := u.attempts.Save(ctx, *a); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 他人の試行は見えない（404）
func (u *CheckoutUsecase) load(ctx context.Context, userID int64, attemptID string) (model.CheckoutAttempt, error) {
	if _, err := uuid.Parse(attemptID); err != nil {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := u.attempts.FindByID(ctx, attemptID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if a.UserID != userID {
		return model.CheckoutAttempt{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return a, nil
}

func (u *CheckoutUsecase) lock(attemptID string) func() {
	mu := u.lockFor(attemptID)
	mu.Lock()
	return mu.Unlock
}

func (u *CheckoutUsecase) lockFor(attemptID string) *sync.Mutex {
	return &u.locks[xxhash.Sum64String(attemptID)%checkoutLockShards]
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	ProviderPayPal   PaymentProvider = "paypal"
	ProviderRazorpay PaymentProvider = "razorpay"
)

func (p PaymentProvider) Valid() bool {
	return p == ProviderPayPal || p == ProviderRazorpay
}

type CheckoutState string

const (
	CheckoutIdle             CheckoutState = "idle"
	CheckoutScriptLoading    CheckoutState = "scriptLoading"
	CheckoutScriptReady      CheckoutState = "scriptReady"
	CheckoutOrderCreating    CheckoutState = "orderCreating"
	CheckoutAwaitingApproval CheckoutState = "awaitingApproval"
	CheckoutCapturing        CheckoutState = "capturing"
	CheckoutSucceeded        CheckoutState = "succeeded"
	CheckoutFailed           CheckoutState = "failed"
	CheckoutCancelled        CheckoutState = "cancelled"
)

// 遷移可能な次の状態
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:             {CheckoutScriptLoading},
	CheckoutScriptLoading:    {CheckoutScriptReady, CheckoutScriptLoading, CheckoutFailed, CheckoutCancelled},
	CheckoutScriptReady:      {CheckoutOrderCreating, CheckoutScriptLoading, CheckoutFailed, CheckoutCancelled},
	CheckoutOrderCreating:    {CheckoutAwaitingApproval, CheckoutFailed, CheckoutCancelled},
	CheckoutAwaitingApproval: {CheckoutCapturing, CheckoutFailed, CheckoutCancelled},
	CheckoutCapturing:        {CheckoutSucceeded, CheckoutFailed},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, n := range checkoutTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) Terminal() bool {
	return s == CheckoutSucceeded || s == CheckoutFailed || s == CheckoutCancelled
}

// 決済1回分の試行
type CheckoutAttempt struct {
	ID              string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	Provider        PaymentProvider `gorm:"type:varchar(20);not null" json:"provider"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	State           CheckoutState   `gorm:"type:varchar(20);not null;index" json:"state"`
	ScriptURL       string          `gorm:"type:varchar(1024)" json:"script_url"`
	ProviderOrderID string          `gorm:"type:varchar(255)" json:"provider_order_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	// 注文作成時点のカート明細（承認時はこれを記録・精算する）
	Items         []CartItem `gorm:"type:jsonb;serializer:json" json:"items,omitempty"`
	FailureReason string     `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

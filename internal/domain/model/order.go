package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 決済完了後にローカルへ保存する注文履歴
type OrderRecord struct {
	AttemptID       string          `json:"attempt_id"`
	Provider        PaymentProvider `json:"provider"`
	ProviderOrderID string          `json:"provider_order_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Items           []CartItem      `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Package payment は外部決済プロバイダ（PayPal / Razorpay）との通信を扱う。
package payment

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart        = errors.New("cart empty")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNotCompleted     = errors.New("payment not completed")
)

// 受け付ける通貨
var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"INR": true,
	"GBP": true,
	"JPY": true,
}

// 補助単位を持たない通貨
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
}

func NormalizeCurrency(cur string) string {
	return strings.ToUpper(strings.TrimSpace(cur))
}

func SupportedCurrency(cur string) bool {
	return supportedCurrencies[NormalizeCurrency(cur)]
}

type OrderItem struct {
	ProductID int64
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// OrderDescriptor はカートのスナップショットから作る注文内容
type OrderDescriptor struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Items     []OrderItem
}

// NewOrderDescriptor はカート明細から注文内容を作る。空なら ErrEmptyCart。
func NewOrderDescriptor(reference string, items []model.CartItem, currency string) (OrderDescriptor, error) {
	if len(items) == 0 {
		return OrderDescriptor{}, ErrEmptyCart
	}

	d := OrderDescriptor{
		Reference: reference,
		Amount:    decimal.Zero,
		Currency:  NormalizeCurrency(currency),
		Items:     make([]OrderItem, 0, len(items)),
	}
	//単価を通貨の桁に丸めてから合計する（プロバイダ側の明細合計と一致させる）
	for _, it := range items {
		unit := roundToCurrency(it.Product.Price, d.Currency)
		d.Items = append(d.Items, OrderItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: unit,
		})
		d.Amount = d.Amount.Add(unit.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return d, nil
}

// Approval は購入者の承認後にクライアントから返る値
type Approval struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Provider interface {
	Name() model.PaymentProvider
	ScriptURL(currency string) string
	CreateOrder(ctx context.Context, d OrderDescriptor) (string, error)
	Capture(ctx context.Context, orderID string, a Approval) error
}

// Registry はプロバイダ名から実装を引く
type Registry map[model.PaymentProvider]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Get(name model.PaymentProvider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// ItemTotal は丸めた単価×数量の合計
func (d OrderDescriptor) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(roundToCurrency(it.UnitPrice, d.Currency).Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

func roundToCurrency(d decimal.Decimal, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[currency] {
		return d.Round(0)
	}
	return d.Round(2)
}

// formatAmount はAPIに渡す金額文字列
func formatAmount(d decimal.Decimal, currency string) string {
	if zeroDecimalCurrencies[currency] {
		return d.Round(0).StringFixed(0)
	}
	return d.StringFixed(2)
}

// minorUnits は最小通貨単位の整数（Razorpay 用）
func minorUnits(d decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return d.Round(0).IntPart()
	}
	return d.Shift(2).Round(0).IntPart()
}

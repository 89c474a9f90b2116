package payment

import (
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartItems() []model.CartItem {
	return []model.CartItem{
		{Product: model.ProductSnapshot{ID: 1, Name: "Tomato seeds", Price: decimal.NewFromInt(10)}, Quantity: 2},
		{Product: model.ProductSnapshot{ID: 2, Name: "Compost", Price: decimal.RequireFromString("5.50")}, Quantity: 1},
	}
}

func TestNewOrderDescriptor(t *testing.T) {
	d, err := NewOrderDescriptor("att-1", cartItems(), "usd")
	require.NoError(t, err)

	assert.Equal(t, "USD", d.Currency)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("25.50")))
	require.Len(t, d.Items, 2)
	assert.Equal(t, int64(2), d.Items[0].Quantity)
	assert.Equal(t, "att-1", d.Reference)
}

func TestNewOrderDescriptor_EmptyCart(t *testing.T) {
	_, err := NewOrderDescriptor("att-1", nil, "USD")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSupportedCurrency(t *testing.T) {
	assert.True(t, SupportedCurrency("inr"))
	assert.True(t, SupportedCurrency(" JPY "))
	assert.False(t, SupportedCurrency("BTC"))
	assert.False(t, SupportedCurrency(""))
}

func TestAmountFormatting(t *testing.T) {
	assert.Equal(t, "25.50", formatAmount(decimal.RequireFromString("25.5"), "USD"))
	assert.Equal(t, "1200", formatAmount(decimal.RequireFromString("1200"), "JPY"))
	assert.Equal(t, int64(2550), minorUnits(decimal.RequireFromString("25.5"), "INR"))
	assert.Equal(t, int64(1200), minorUnits(decimal.RequireFromString("1200"), "JPY"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewRazorpayClient(RazorpayConfig{KeyID: "k"}))

	p, ok := r.Get(model.ProviderRazorpay)
	require.True(t, ok)
	assert.Equal(t, model.ProviderRazorpay, p.Name())

	_, ok = r.Get(model.ProviderPayPal)
	assert.False(t, ok)
}

func TestNewOrderDescriptor_ZeroDecimalCurrencyRoundsUnitPrice(t *testing.T) {
	items := []model.CartItem{
		{Product: model.ProductSnapshot{ID: 1, Name: "Seed tray", Price: decimal.RequireFromString("10.5")}, Quantity: 2},
	}
	d, err := NewOrderDescriptor("att-1", items, "JPY")
	require.NoError(t, err)

	assert.True(t, d.Items[0].UnitPrice.Equal(decimal.NewFromInt(11)))
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(22)))
	assert.True(t, d.ItemTotal().Equal(d.Amount))
	assert.Equal(t, int64(22), minorUnits(d.Amount, d.Currency))
}

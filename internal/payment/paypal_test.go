package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePayPal はトークン発行と Orders API を模したサーバ
func fakePayPal(t *testing.T, captureStatus string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var orders []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		orders = append(orders, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-ORDER-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-ORDER-1","status":"` + captureStatus + `"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &orders
}

func newPayPal(srv *httptest.Server) *PayPalClient {
	return NewPayPalClient(PayPalConfig{BaseURL: srv.URL, ClientID: "client", ClientSecret: "secret"})
}

func TestPayPal_ScriptURL(t *testing.T) {
	c := NewPayPalClient(PayPalConfig{ClientID: "abc"})
	assert.Equal(t, "https://www.paypal.com/sdk/js?client-id=abc&currency=EUR", c.ScriptURL("eur"))
}

func TestPayPal_CreateOrder(t *testing.T) {
	srv, orders := fakePayPal(t, "COMPLETED")
	d, err := NewOrderDescriptor("att-1", cartItems(), "USD")
	require.NoError(t, err)

	id, err := newPayPal(srv).CreateOrder(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "PP-ORDER-1", id)

	require.Len(t, *orders, 1)
	body := (*orders)[0]
	assert.Equal(t, "CAPTURE", body["intent"])
	unit := body["purchase_units"].([]any)[0].(map[string]any)
	amount := unit["amount"].(map[string]any)
	assert.Equal(t, "25.50", amount["value"])
	assert.Equal(t, "USD", amount["currency_code"])
	assert.Len(t, unit["items"], 2)
}

func TestPayPal_Capture(t *testing.T) {
	srv, _ := fakePayPal(t, "COMPLETED")
	err := newPayPal(srv).Capture(context.Background(), "PP-ORDER-1", Approval{OrderID: "PP-ORDER-1"})
	assert.NoError(t, err)
}

func TestPayPal_CaptureNotCompleted(t *testing.T) {
	srv, _ := fakePayPal(t, "PENDING")
	err := newPayPal(srv).Capture(context.Background(), "PP-ORDER-1", Approval{})
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestPayPal_CaptureOrderMismatch(t *testing.T) {
	srv, _ := fakePayPal(t, "COMPLETED")
	err := newPayPal(srv).Capture(context.Background(), "PP-ORDER-1", Approval{OrderID: "OTHER"})
	assert.Error(t, err)
}

func TestPayPal_BadCredentials(t *testing.T) {
	srv, _ := fakePayPal(t, "COMPLETED")
	c := NewPayPalClient(PayPalConfig{BaseURL: srv.URL, ClientID: "client", ClientSecret: "wrong"})
	d, err := NewOrderDescriptor("att-1", cartItems(), "USD")
	require.NoError(t, err)

	_, err = c.CreateOrder(context.Background(), d)
	assert.Error(t, err)
}

func TestPayPal_CreateOrder_ItemTotalMatchesItems(t *testing.T) {
	srv, orders := fakePayPal(t, "COMPLETED")
	d, err := NewOrderDescriptor("att-2", []model.CartItem{
		{Product: model.ProductSnapshot{ID: 1, Name: "Seed tray", Price: decimal.RequireFromString("10.5")}, Quantity: 2},
	}, "JPY")
	require.NoError(t, err)

	_, err = newPayPal(srv).CreateOrder(context.Background(), d)
	require.NoError(t, err)

	unit := (*orders)[0]["purchase_units"].([]any)[0].(map[string]any)
	amount := unit["amount"].(map[string]any)
	breakdown := amount["breakdown"].(map[string]any)["item_total"].(map[string]any)
	item := unit["items"].([]any)[0].(map[string]any)

	assert.Equal(t, "11", item["unit_amount"].(map[string]any)["value"])
	assert.Equal(t, "22", breakdown["value"])
	assert.Equal(t, "22", amount["value"])
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const payPalScriptBase = "https://www.paypal.com/sdk/js"

type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// PayPalClient は Orders v2 API を叩く
type PayPalClient struct {
	baseURL  string
	clientID string
	http     *http.Client
}

func NewPayPalClient(cfg PayPalConfig) *PayPalClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	//トークン取得はclient_credentials（Basic認証ヘッダ）
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	hc := cc.Client(ctx)
	hc.Timeout = timeout

	return &PayPalClient{
		baseURL:  base,
		clientID: cfg.ClientID,
		http:     hc,
	}
}

func (c *PayPalClient) Name() model.PaymentProvider { return model.ProviderPayPal }

func (c *PayPalClient) ScriptURL(currency string) string {
	q := url.Values{}
	q.Set("client-id", c.clientID)
	q.Set("currency", NormalizeCurrency(currency))
	return payPalScriptBase + "?" + q.Encode()
}

type payPalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type payPalItem struct {
	Name       string      `json:"name"`
	Quantity   string      `json:"quantity"`
	UnitAmount payPalMoney `json:"unit_amount"`
}

type payPalAmount struct {
	payPalMoney
	Breakdown struct {
		ItemTotal payPalMoney `json:"item_total"`
	} `json:"breakdown"`
}

type payPalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	Amount      payPalAmount `json:"amount"`
	Items       []payPalItem `json:"items"`
}

type payPalOrderRequest struct {
	Intent        string               `json:"intent"`
	PurchaseUnits []payPalPurchaseUnit `json:"purchase_units"`
}

type payPalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *PayPalClient) CreateOrder(ctx context.Context, d OrderDescriptor) (string, error) {
	unit := payPalPurchaseUnit{ReferenceID: d.Reference}
	total := payPalMoney{CurrencyCode: d.Currency, Value: formatAmount(d.ItemTotal(), d.Currency)}
	unit.Amount.payPalMoney = total
	unit.Amount.Breakdown.ItemTotal = total
	for _, it := range d.Items {
		unit.Items = append(unit.Items, payPalItem{
			Name:     it.Name,
			Quantity: strconv.FormatInt(it.Quantity, 10),
			UnitAmount: payPalMoney{
				CurrencyCode: d.Currency,
				Value:        formatAmount(it.UnitPrice, d.Currency),
			},
		})
	}

	var out payPalOrderResponse
	if err := c.post(ctx, "/v2/checkout/orders", payPalOrderRequest{
		Intent:        "CAPTURE",
		PurchaseUnits: []payPalPurchaseUnit{unit},
	}, &out); err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal create order: empty order id")
	}
	return out.ID, nil
}

// Capture は承認済み注文を確定する。COMPLETED 以外は失敗扱い。
func (c *PayPalClient) Capture(ctx context.Context, orderID string, a Approval) error {
	if a.OrderID != "" && a.OrderID != orderID {
		return fmt.Errorf("paypal capture: order id mismatch")
	}

	var out payPalOrderResponse
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.post(ctx, path, struct{}{}, &out); err != nil {
		return fmt.Errorf("paypal capture: %w", err)
	}
	if out.Status != "COMPLETED" {
		return fmt.Errorf("paypal capture: status %q: %w", out.Status, ErrNotCompleted)
	}
	return nil
}

func (c *PayPalClient) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return decodeResponse(res, out)
}

func decodeResponse(res *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.Unmarshal(raw, out)
}

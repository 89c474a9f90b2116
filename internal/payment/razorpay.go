package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
)

const razorpayScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// RazorpayClient は Orders API と署名検証を扱う
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *RazorpayClient) Name() model.PaymentProvider { return model.ProviderRazorpay }

// ScriptURL は通貨に依存しない
func (c *RazorpayClient) ScriptURL(string) string { return razorpayScriptURL }

// KeyID はチェックアウト画面に渡す公開キー
func (c *RazorpayClient) KeyID() string { return c.keyID }

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

type razorpayOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, d OrderDescriptor) (string, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   minorUnits(d.Amount, d.Currency),
		Currency: d.Currency,
		Receipt:  d.Reference,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	defer res.Body.Close()

	var out razorpayOrderResponse
	if err := decodeResponse(res, &out); err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("razorpay create order: empty order id")
	}
	return out.ID, nil
}

// Capture は checkout.js が返した署名を検証する（自動キャプチャ前提）
func (c *RazorpayClient) Capture(ctx context.Context, orderID string, a Approval) error {
	if a.PaymentID == "" || a.Signature == "" {
		return ErrInvalidSignature
	}
	if !VerifyRazorpaySignature(c.keySecret, orderID, a.PaymentID, a.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// RazorpaySignature は order_id|payment_id の HMAC-SHA256（hex）
func RazorpaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyRazorpaySignature(secret, orderID, paymentID, signature string) bool {
	expected := RazorpaySignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpaygo "github.com/razorpay/razorpay-go"

	"github.com/akashgupta/shopkart-backend/pkg/config"
)

// Client wraps the Razorpay SDK for order creation and signature checks.
type Client struct {
	api       *razorpaygo.Client
	keyID     string
	keySecret string
	currency  string
}

// New constructs a gateway client from configuration.
func New(cfg config.RazorpayConfig) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Client{
		api:       razorpaygo.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  currency,
	}, nil
}

// KeyID returns the public key identifier clients embed in the
// browser checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	return c.currency
}

// CreateOrder registers an order with the gateway and returns its id.
// Amount is in the currency's smallest unit (paise for INR).
func (c *Client) CreateOrder(amountSubunits int64, receipt string, notes map[string]any) (string, error) {
	if amountSubunits <= 0 {
		return "", fmt.Errorf("gateway order amount must be positive, got %d", amountSubunits)
	}

	data := map[string]any{
		"amount":   amountSubunits,
		"currency": c.currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("creating gateway order: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("gateway order response missing id")
	}
	return id, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay attaches to
// a completed payment. The signed message is "<order_id>|<payment_id>".
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return verifySignature(c.keySecret, gatewayOrderID, paymentID, signature)
}

func verifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

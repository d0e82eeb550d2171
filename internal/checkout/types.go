package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// BuyNowIntent is the single-product purchase stored in the session,
// fully separate from the cart. Price is snapshotted when the intent
// is created.
type BuyNowIntent struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// InitiateResultDTO carries everything the browser widget needs to
// open the gateway checkout.
type InitiateResultDTO struct {
	OrderID        uuid.UUID `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key_id"`
}

// FinalizeParams is the gateway callback payload.
type FinalizeParams struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// FinalizeResultDTO reports the settled order.
type FinalizeResultDTO struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

// orderLine is an internal snapshot used while assembling an order.
type orderLine struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

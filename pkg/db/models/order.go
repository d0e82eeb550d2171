package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// Order is a checkout attempt. One row is created per gateway initiate;
// status moves forward only (created -> paid/failed/cancelled).
type Order struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string             `gorm:"column:email;not null;index:orders_email_idx"`
	TotalAmount decimal.Decimal    `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status      enums.OrderStatus  `gorm:"column:status;not null;default:'created'"`
	Mode        enums.CheckoutMode `gorm:"column:mode;not null;default:'cart'"`

	GatewayOrderID   *string `gorm:"column:gateway_order_id;uniqueIndex:orders_gateway_order_id_key"`
	GatewayPaymentID *string `gorm:"column:gateway_payment_id"`
	GatewaySignature *string `gorm:"column:gateway_signature"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

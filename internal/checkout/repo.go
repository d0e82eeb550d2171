package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// Repository persists checkout orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkout repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithItems inserts the order and its line items in one transaction.
func (r *Repository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

// FindByGatewayOrderID loads an order with its items.
func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).
		Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid settles a created order. The conditional WHERE makes repeat
// callbacks no-ops; the bool reports whether this call did the settle.
func (r *Repository) MarkPaid(ctx context.Context, gatewayOrderID, paymentID, signature string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, enums.OrderStatusCreated).
		Updates(map[string]any{
			"status":             enums.OrderStatusPaid,
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed records a failed settlement attempt on a created order.
func (r *Repository) MarkFailed(ctx context.Context, gatewayOrderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, enums.OrderStatusCreated).
		Update("status", enums.OrderStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

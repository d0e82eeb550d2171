package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// OrderItemDTO is one immutable line of an order.
type OrderItemDTO struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderDTO is the account-facing order projection.
type OrderDTO struct {
	ID          uuid.UUID          `json:"id"`
	Status      enums.OrderStatus  `json:"status"`
	Mode        enums.CheckoutMode `json:"mode"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []OrderItemDTO     `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// OrdersPageDTO is a cursor-paginated order history view.
type OrdersPageDTO struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toOrderDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		Status:      order.Status,
		Mode:        order.Mode,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return dto
}

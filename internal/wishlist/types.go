package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ToggleResultDTO reports the state after a toggle call.
type ToggleResultDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Wished    bool      `json:"wished"`
}

// ItemDTO is one wishlist entry rendered against the live catalog.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url"`
	AddedAt   time.Time       `json:"added_at"`
}

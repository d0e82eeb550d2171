package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one cart row as stored in the session. Price is the snapshot
// taken when the product first entered the cart; later catalog price
// changes do not affect it.
type Entry struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Contents maps product id (string form) to its cart entry.
// Zero-quantity entries are never stored.
type Contents map[string]Entry

// Total sums price * quantity over all entries.
func (c Contents) Total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range c {
		total = total.Add(entry.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return total
}

// TotalQty sums the quantities over all entries.
func (c Contents) TotalQty() int {
	total := 0
	for _, entry := range c {
		total += entry.Quantity
	}
	return total
}

// LineDTO is a rendered cart row joined against the live catalog.
type LineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	ImageURL  *string         `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartDTO is the full cart view.
type CartDTO struct {
	Lines     []LineDTO       `json:"lines"`
	CartCount int             `json:"cart_count"`
	TotalQty  int             `json:"total_qty"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

// SummaryDTO is returned from cart mutations.
type SummaryDTO struct {
	CartCount int              `json:"cart_count"`
	TotalQty  int              `json:"total_qty"`
	CartTotal decimal.Decimal  `json:"cart_total"`
	RowTotal  *decimal.Decimal `json:"row_total,omitempty"`
}

package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryDTO is the public category projection.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductSummary is the listing-card projection of a product.
type ProductSummary struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CategorySlug string          `json:"category_slug"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductDetailDTO is the full product page payload, including the
// approved-review aggregates and related products from the same category.
type ProductDetailDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	ImageURL      *string          `json:"image_url,omitempty"`
	Category      CategoryDTO      `json:"category"`
	AverageRating float64          `json:"average_rating"`
	ReviewCount   int64            `json:"review_count"`
	Related       []ProductSummary `json:"related"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ListParams filters and paginates the product listing.
type ListParams struct {
	CategorySlug string
	Search       string
	Cursor       string
	Limit        int
}

// ProductsPageDTO is a cursor-paginated product listing.
type ProductsPageDTO struct {
	Items      []ProductSummary `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

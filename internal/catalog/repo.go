package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).
		Error
	return categories, err
}

// FindCategoryBySlug loads a single category.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).
		Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListProducts returns a page of active products, newest first, optionally
// filtered by category slug and a case-insensitive name match.
func (r *Repository) ListProducts(ctx context.Context, params ListParams) ([]models.Product, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ?", true)

	if params.CategorySlug != "" {
		query = query.Where("categories.slug = ?", params.CategorySlug)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		query = query.Where("lower(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if decodedCursor != nil {
		query = query.Where(
			"(products.created_at < ?) OR (products.created_at = ? AND products.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var products []models.Product
	err = query.
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&products).
		Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(products) > normalizedLimit {
		products = products[:normalizedLimit]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return products, nextCursor, nil
}

// FindProductBySlug loads an active product with its category.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).
		Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByID loads an active product by primary key.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).
		Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs batch-loads active products for cart rendering.
// Missing or deactivated ids are simply absent from the result.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).
		Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// ListRelated returns up to limit other active products from the same category.
func (r *Repository) ListRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ? AND id <> ? AND is_active = ?", categoryID, excludeID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).
		Error
	return products, err
}

// ProductReviewAggregates returns the average rating and count over
// approved reviews only.
func (r *Repository) ProductReviewAggregates(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Table("feedback").
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ? AND approved = ?", productID, true).
		Scan(&row).
		Error
	if err != nil {
		return 0, 0, err
	}
	return row.Average, row.Total, nil
}

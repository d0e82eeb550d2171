package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
)

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo     *Repository
	Products productFinder
}

// Service handles the per-user wishlist.
type Service interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
}

type service struct {
	repo     *Repository
	products productFinder
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

// Toggle adds the product when absent and removes it when present.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResultDTO, error) {
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist")
	}
	if removed {
		return ToggleResultDTO{ProductID: productID, Wished: false}, nil
	}

	item := models.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID}
	if _, err := s.repo.Add(ctx, &item); err != nil {
		return ToggleResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle wishlist")
	}
	return ToggleResultDTO{ProductID: productID, Wished: true}, nil
}

// List renders the user's wishlist against the live catalog. Entries
// whose product has been deactivated or removed are skipped.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	result := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		product, ok := products[row.ProductID]
		if !ok {
			continue
		}
		result = append(result, ItemDTO{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			AddedAt:   row.CreatedAt,
		})
	}
	return result, nil
}

package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
)

const relatedProductsLimit = 4

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes the public browsing surface of the catalog.
type Service interface {
	Categories(ctx context.Context) ([]CategoryDTO, error)
	Products(ctx context.Context, params ListParams) (ProductsPageDTO, error)
	ProductDetail(ctx context.Context, slug string) (ProductDetailDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	result := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		result = append(result, toCategoryDTO(c))
	}
	return result, nil
}

func (s *service) Products(ctx context.Context, params ListParams) (ProductsPageDTO, error) {
	if params.CategorySlug != "" {
		if _, err := s.repo.FindCategoryBySlug(ctx, params.CategorySlug); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
			}
			return ProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}

	products, nextCursor, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return ProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list products")
	}

	items := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		items = append(items, toProductSummary(p))
	}
	return ProductsPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) ProductDetail(ctx context.Context, slug string) (ProductDetailDTO, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	average, count, err := s.repo.ProductReviewAggregates(ctx, product.ID)
	if err != nil {
		return ProductDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review aggregates")
	}

	related, err := s.repo.ListRelated(ctx, product.CategoryID, product.ID, relatedProductsLimit)
	if err != nil {
		return ProductDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related products")
	}

	relatedItems := make([]ProductSummary, 0, len(related))
	for _, p := range related {
		relatedItems = append(relatedItems, toProductSummary(p))
	}

	detail := ProductDetailDTO{
		ID:            product.ID,
		Name:          product.Name,
		Slug:          product.Slug,
		Description:   product.Description,
		Price:         product.Price,
		ImageURL:      product.ImageURL,
		AverageRating: average,
		ReviewCount:   count,
		Related:       relatedItems,
		CreatedAt:     product.CreatedAt,
	}
	if product.Category != nil {
		detail.Category = toCategoryDTO(*product.Category)
	}
	return detail, nil
}

func toCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:   c.ID,
		Name: c.Name,
		Slug: c.Slug,
	}
}

func toProductSummary(p models.Product) ProductSummary {
	summary := ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
	if p.Category != nil {
		summary.CategorySlug = p.Category.Slug
	}
	return summary
}

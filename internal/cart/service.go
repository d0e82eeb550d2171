package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	sessionpkg "github.com/akashgupta/shopkart-backend/pkg/session"
)

type sessionStore interface {
	Get(ctx context.Context, sessionID, name string, dest any) error
	Set(ctx context.Context, sessionID, name string, value any) error
	Delete(ctx context.Context, sessionID, name string) error
}

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Sessions sessionStore
	Products productFinder
}

// Service manages the session-backed shopping cart.
type Service interface {
	Get(ctx context.Context, sessionID string) (CartDTO, error)
	Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, replace bool) (SummaryDTO, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (SummaryDTO, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (Contents, error)
}

type service struct {
	sessions sessionStore
	products productFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	return &service{
		sessions: params.Sessions,
		products: params.Products,
	}, nil
}

// Get renders the cart against the live catalog. Entries pointing at
// removed or deactivated products are skipped; totals still come from
// the session snapshot of what remains visible.
func (s *service) Get(ctx context.Context, sessionID string) (CartDTO, error) {
	contents, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		return CartDTO{}, err
	}

	ids := make([]uuid.UUID, 0, len(contents))
	for key := range contents {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	found, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	dto := CartDTO{Lines: []LineDTO{}, CartTotal: decimal.Zero}
	for key, entry := range contents {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		product, ok := found[id]
		if !ok {
			continue
		}
		lineTotal := entry.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID: id,
			Name:      product.Name,
			Slug:      product.Slug,
			ImageURL:  product.ImageURL,
			UnitPrice: entry.Price,
			Quantity:  entry.Quantity,
			LineTotal: lineTotal,
		})
		dto.CartCount++
		dto.TotalQty += entry.Quantity
		dto.CartTotal = dto.CartTotal.Add(lineTotal)
	}
	return dto, nil
}

// Add puts quantity units of the product into the cart. With replace the
// quantity is set outright, otherwise it accumulates. The unit price is
// snapshotted on first add and kept on later updates.
func (s *service) Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, replace bool) (SummaryDTO, error) {
	if quantity < 1 {
		return SummaryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	contents, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		return SummaryDTO{}, err
	}

	key := productID.String()
	entry, exists := contents[key]
	if !exists {
		entry = Entry{Price: product.Price}
	}
	if replace {
		entry.Quantity = quantity
	} else {
		entry.Quantity += quantity
	}
	contents[key] = entry

	if err := s.save(ctx, sessionID, contents); err != nil {
		return SummaryDTO{}, err
	}

	rowTotal := entry.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	return summaryWithRow(contents, &rowTotal), nil
}

// Remove drops the product's entry. Removing an absent product is a no-op.
func (s *service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (SummaryDTO, error) {
	contents, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		return SummaryDTO{}, err
	}

	delete(contents, productID.String())

	if err := s.save(ctx, sessionID, contents); err != nil {
		return SummaryDTO{}, err
	}
	return summaryWithRow(contents, nil), nil
}

// Clear removes the cart blob entirely.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID, sessionpkg.KeyCart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Snapshot returns the raw session contents. A missing blob is an empty cart.
func (s *service) Snapshot(ctx context.Context, sessionID string) (Contents, error) {
	contents := Contents{}
	if err := s.sessions.Get(ctx, sessionID, sessionpkg.KeyCart, &contents); err != nil {
		if errors.Is(err, sessionpkg.ErrNotFound) {
			return Contents{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return contents, nil
}

func (s *service) save(ctx context.Context, sessionID string, contents Contents) error {
	if err := s.sessions.Set(ctx, sessionID, sessionpkg.KeyCart, contents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func summaryWithRow(contents Contents, rowTotal *decimal.Decimal) SummaryDTO {
	return SummaryDTO{
		CartCount: len(contents),
		TotalQty:  contents.TotalQty(),
		CartTotal: contents.Total(),
		RowTotal:  rowTotal,
	}
}

package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	"github.com/akashgupta/shopkart-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes the authenticated account's order history. Ownership
// is keyed by the email the order was placed with.
type Service interface {
	List(ctx context.Context, email string, params pagination.Params) (OrdersPageDTO, error)
	Detail(ctx context.Context, email string, orderID uuid.UUID) (OrderDTO, error)
	Cancel(ctx context.Context, email string, orderID uuid.UUID) (OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, email string, params pagination.Params) (OrdersPageDTO, error) {
	if strings.TrimSpace(email) == "" {
		return OrdersPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "email is required")
	}

	orders, nextCursor, err := s.repo.ListByEmail(ctx, email, params)
	if err != nil {
		return OrdersPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderDTO(order))
	}
	return OrdersPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) Detail(ctx context.Context, email string, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.loadOwned(ctx, email, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	return toOrderDTO(*order), nil
}

// Cancel transitions the order to cancelled. Paid and already cancelled
// orders are rejected; failed orders may still be cancelled.
func (s *service) Cancel(ctx context.Context, email string, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.loadOwned(ctx, email, orderID)
	if err != nil {
		return OrderDTO{}, err
	}

	if !order.Status.Cancellable() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	changed, err := s.repo.Cancel(ctx, orderID)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if !changed {
		// lost a race with settlement or another cancel
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return toOrderDTO(*updated), nil
}

func (s *service) loadOwned(ctx context.Context, email string, orderID uuid.UUID) (*models.Order, error) {
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email is required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !strings.EqualFold(order.Email, email) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to a different account")
	}
	return order, nil
}

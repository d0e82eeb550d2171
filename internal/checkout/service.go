package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/internal/cart"
	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	sessionpkg "github.com/akashgupta/shopkart-backend/pkg/session"
)

type cartReader interface {
	Snapshot(ctx context.Context, sessionID string) (cart.Contents, error)
	Clear(ctx context.Context, sessionID string) error
}

type sessionStore interface {
	Get(ctx context.Context, sessionID, name string, dest any) error
	Set(ctx context.Context, sessionID, name string, value any) error
	Delete(ctx context.Context, sessionID, name string) error
}

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type gateway interface {
	CreateOrder(amountSubunits int64, receipt string, notes map[string]any) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Repo     *Repository
	Carts    cartReader
	Sessions sessionStore
	Products productFinder
	Gateway  gateway
}

// Service drives the two-step payment flow: initiate registers an order
// with the gateway, finalize settles it after the browser widget returns.
type Service interface {
	SetBuyNow(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) error
	ClearBuyNow(ctx context.Context, sessionID string) error
	Initiate(ctx context.Context, sessionID, email string, mode enums.CheckoutMode) (InitiateResultDTO, error)
	Finalize(ctx context.Context, sessionID string, params FinalizeParams) (FinalizeResultDTO, error)
}

type service struct {
	repo     *Repository
	carts    cartReader
	sessions sessionStore
	products productFinder
	gateway  gateway
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout repo is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway is required")
	}
	return &service{
		repo:     params.Repo,
		carts:    params.Carts,
		sessions: params.Sessions,
		products: params.Products,
		gateway:  params.Gateway,
	}, nil
}

// SetBuyNow stores a single-product purchase intent in the session.
// The cart is untouched; the intent lives under its own key.
func (s *service) SetBuyNow(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	intent := BuyNowIntent{
		ProductID: productID.String(),
		Quantity:  quantity,
		Price:     product.Price,
	}
	if err := s.sessions.Set(ctx, sessionID, sessionpkg.KeyBuyNow, intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save buy-now intent")
	}
	return nil
}

// ClearBuyNow drops the stored intent if any.
func (s *service) ClearBuyNow(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID, sessionpkg.KeyBuyNow); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear buy-now intent")
	}
	return nil
}

// Initiate snapshots the purchase lines, registers the amount with the
// gateway, and persists a created order. Concurrent initiates may leave
// multiple created orders; only one of them will ever settle.
func (s *service) Initiate(ctx context.Context, sessionID, email string, mode enums.CheckoutMode) (InitiateResultDTO, error) {
	if !mode.IsValid() {
		return InitiateResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout mode")
	}
	if strings.TrimSpace(email) == "" {
		return InitiateResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	lines, err := s.buildLines(ctx, sessionID, mode)
	if err != nil {
		return InitiateResultDTO{}, err
	}
	if len(lines) == 0 {
		return InitiateResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "nothing to check out")
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	amountSubunits := total.Shift(2).Round(0).IntPart()
	if amountSubunits <= 0 {
		return InitiateResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	orderID := uuid.New()
	gatewayOrderID, err := s.gateway.CreateOrder(amountSubunits, orderID.String(), map[string]any{
		"email": email,
		"mode":  mode.String(),
	})
	if err != nil {
		return InitiateResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	order := &models.Order{
		ID:             orderID,
		Email:          email,
		TotalAmount:    total,
		Status:         enums.OrderStatusCreated,
		Mode:           mode,
		GatewayOrderID: &gatewayOrderID,
	}
	for _, line := range lines {
		productID := line.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID: &productID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if err := s.repo.CreateWithItems(ctx, order); err != nil {
		return InitiateResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	return InitiateResultDTO{
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		Amount:         amountSubunits,
		Currency:       s.gateway.Currency(),
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// Finalize verifies the gateway signature and settles the order. A
// repeated callback for an already paid order succeeds without changes.
// On signature mismatch the order is marked failed and the caller gets
// a validation error.
func (s *service) Finalize(ctx context.Context, sessionID string, params FinalizeParams) (FinalizeResultDTO, error) {
	if params.GatewayOrderID == "" || params.GatewayPaymentID == "" || params.GatewaySignature == "" {
		return FinalizeResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id, payment id and signature are required")
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, params.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FinalizeResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return FinalizeResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch order.Status {
	case enums.OrderStatusPaid:
		return FinalizeResultDTO{OrderID: order.ID, Status: enums.OrderStatusPaid}, nil
	case enums.OrderStatusFailed, enums.OrderStatusCancelled:
		return FinalizeResultDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be settled")
	}

	if !s.gateway.VerifySignature(params.GatewayOrderID, params.GatewayPaymentID, params.GatewaySignature) {
		if _, err := s.repo.MarkFailed(ctx, params.GatewayOrderID); err != nil {
			return FinalizeResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record failed settlement")
		}
		return FinalizeResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "payment signature verification failed")
	}

	if _, err := s.repo.MarkPaid(ctx, params.GatewayOrderID, params.GatewayPaymentID, params.GatewaySignature); err != nil {
		return FinalizeResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order")
	}

	if err := s.clearSessionState(ctx, sessionID, order.Mode); err != nil {
		return FinalizeResultDTO{}, err
	}

	return FinalizeResultDTO{OrderID: order.ID, Status: enums.OrderStatusPaid}, nil
}

func (s *service) buildLines(ctx context.Context, sessionID string, mode enums.CheckoutMode) ([]orderLine, error) {
	if mode == enums.CheckoutModeBuyNow {
		var intent BuyNowIntent
		if err := s.sessions.Get(ctx, sessionID, sessionpkg.KeyBuyNow, &intent); err != nil {
			if errors.Is(err, sessionpkg.ErrNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "no buy-now purchase in progress")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buy-now intent")
		}
		productID, err := uuid.Parse(intent.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buy-now product id")
		}
		product, err := s.products.FindProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product no longer available")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		return []orderLine{{
			ProductID: productID,
			Name:      product.Name,
			UnitPrice: intent.Price,
			Quantity:  intent.Quantity,
		}}, nil
	}

	contents, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(contents))
	for key := range contents {
		id, parseErr := uuid.Parse(key)
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	found, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	lines := make([]orderLine, 0, len(contents))
	for key, entry := range contents {
		id, parseErr := uuid.Parse(key)
		if parseErr != nil {
			continue
		}
		product, ok := found[id]
		if !ok {
			continue
		}
		lines = append(lines, orderLine{
			ProductID: id,
			Name:      product.Name,
			UnitPrice: entry.Price,
			Quantity:  entry.Quantity,
		})
	}
	return lines, nil
}

func (s *service) clearSessionState(ctx context.Context, sessionID string, mode enums.CheckoutMode) error {
	if mode == enums.CheckoutModeBuyNow {
		return s.ClearBuyNow(ctx, sessionID)
	}
	return s.carts.Clear(ctx, sessionID)
}

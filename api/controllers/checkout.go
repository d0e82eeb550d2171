package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/akashgupta/shopkart-backend/api/middleware"
	"github.com/akashgupta/shopkart-backend/api/responses"
	"github.com/akashgupta/shopkart-backend/api/validators"
	checkoutsvc "github.com/akashgupta/shopkart-backend/internal/checkout"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	"github.com/akashgupta/shopkart-backend/pkg/logger"
)

type buyNowRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type initiateCheckoutRequest struct {
	Mode  string `json:"mode" validate:"required,oneof=cart buy_now"`
	Email string `json:"email" validate:"omitempty,email"`
}

type finalizeCheckoutRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
}

// SetBuyNow stages a single-product purchase without touching the cart.
func SetBuyNow(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload buyNowRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.SetBuyNow(r.Context(), sessionID, productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "staged"})
	}
}

// ClearBuyNow abandons a staged buy-now purchase.
func ClearBuyNow(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearBuyNow(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// InitiateCheckout creates the gateway order for the cart or the staged
// buy-now purchase. Anonymous checkouts must carry an email; logged-in
// users fall back to their account email.
func InitiateCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload initiateCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseCheckoutMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout mode"))
			return
		}

		email := strings.ToLower(strings.TrimSpace(payload.Email))
		if email == "" {
			email = strings.ToLower(middleware.EmailFromContext(r.Context()))
		}
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email is required for checkout"))
			return
		}

		result, err := svc.Initiate(r.Context(), sessionID, email, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// FinalizeCheckout verifies the gateway callback and settles the order.
func FinalizeCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload finalizeCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Finalize(r.Context(), sessionID, checkoutsvc.FinalizeParams{
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			GatewaySignature: payload.GatewaySignature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/akashgupta/shopkart-backend/api/middleware"
	"github.com/akashgupta/shopkart-backend/api/responses"
	"github.com/akashgupta/shopkart-backend/api/validators"
	feedbacksvc "github.com/akashgupta/shopkart-backend/internal/feedback"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	"github.com/akashgupta/shopkart-backend/pkg/logger"
)

type submitFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"omitempty,max=2000"`

	// Contact fields are required only for anonymous submissions.
	ReviewerName  string `json:"reviewer_name" validate:"omitempty,max=128"`
	ReviewerEmail string `json:"reviewer_email" validate:"omitempty,email"`
}

type moderateFeedbackRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// SubmitFeedback records a product review. Authenticated reviews are
// published immediately; anonymous ones await moderation.
func SubmitFeedback(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitFeedbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := feedbacksvc.SubmitParams{
			ProductID:     productID,
			Rating:        payload.Rating,
			Message:       payload.Message,
			ReviewerName:  payload.ReviewerName,
			ReviewerEmail: payload.ReviewerEmail,
		}
		if userID := middleware.UserIDFromContext(r.Context()); userID != uuid.Nil {
			params.UserID = &userID
			params.Username = middleware.UsernameFromContext(r.Context())
			params.UserEmail = middleware.EmailFromContext(r.Context())
		}

		dto, err := svc.Submit(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// FeedbackFeed serves the RSS feed of approved reviews for a product.
func FeedbackFeed(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feed, err := svc.Feed(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		if err := feed.WriteRss(w); err != nil && logg != nil {
			logg.Error(r.Context(), "feedback.feed.write", err)
		}
	}
}

// ApproveFeedback publishes the given pending reviews. Admin only.
func ApproveFeedback(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateFeedback(svc.Approve, logg)
}

// RejectFeedback deletes the given reviews. Admin only.
func RejectFeedback(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderateFeedback(svc.Reject, logg)
}

func moderateFeedback(action func(ctx context.Context, ids []uuid.UUID) (feedbacksvc.ModerationResultDTO, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload moderateFeedbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(payload.IDs))
		for _, raw := range payload.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid feedback id"))
				return
			}
			ids = append(ids, id)
		}

		result, err := action(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

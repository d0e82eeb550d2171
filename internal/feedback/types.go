package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
)

// SubmitParams carries one review submission. UserID and the account
// fields are set only for authenticated submissions.
type SubmitParams struct {
	ProductID uuid.UUID
	Rating    int
	Message   string

	UserID    *uuid.UUID
	Username  string
	UserEmail string

	ReviewerName  string
	ReviewerEmail string
}

// FeedbackDTO is the public review projection.
type FeedbackDTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Rating       int       `json:"rating"`
	Message      string    `json:"message"`
	ReviewerName string    `json:"reviewer_name"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// ModerationResultDTO reports how many rows a bulk moderation call touched.
type ModerationResultDTO struct {
	Affected int64 `json:"affected"`
}

func toFeedbackDTO(fb models.Feedback) FeedbackDTO {
	return FeedbackDTO{
		ID:           fb.ID,
		ProductID:    fb.ProductID,
		Rating:       fb.Rating,
		Message:      fb.Message,
		ReviewerName: fb.ReviewerName,
		Approved:     fb.Approved,
		CreatedAt:    fb.CreatedAt,
	}
}

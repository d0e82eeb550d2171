package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
)

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a feedback repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertAuthenticated keeps one row per (product, user): a repeat
// submission overwrites the previous rating and message.
func (r *Repository) UpsertAuthenticated(ctx context.Context, fb *models.Feedback) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rating", "message", "reviewer_name", "reviewer_email", "approved", "updated_at",
			}),
		}).
		Create(fb).
		Error
}

// CreateAnonymous inserts an unapproved anonymous review.
func (r *Repository) CreateAnonymous(ctx context.Context, fb *models.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

// FindByID loads a single review.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var fb models.Feedback
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&fb).
		Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

// FindByProductAndUser loads the authenticated user's review if any.
func (r *Repository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*models.Feedback, error) {
	var fb models.Feedback
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&fb).
		Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

// ListApproved returns the most recent approved reviews for a product.
func (r *Repository) ListApproved(ctx context.Context, productID uuid.UUID, limit int) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND approved = ?", productID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ApproveByIDs flips the given reviews to approved. Already approved
// rows are counted as touched only when the update changes them.
func (r *Repository) ApproveByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id IN ? AND approved = ?", ids, false).
		Update("approved", true)
	return result.RowsAffected, result.Error
}

// RejectByIDs deletes the given reviews. Unknown ids are skipped.
func (r *Repository) RejectByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Feedback{})
	return result.RowsAffected, result.Error
}

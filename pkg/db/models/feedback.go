package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a product review. Authenticated submissions keep one row
// per (product, user) via upsert and are approved immediately; anonymous
// submissions land unapproved until moderation.
type Feedback struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index:feedback_product_id_idx;uniqueIndex:feedback_product_user_key"`
	UserID        *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex:feedback_product_user_key"`
	Rating        int        `gorm:"column:rating;not null"`
	Message       string     `gorm:"column:message;not null;default:''"`
	ReviewerName  string     `gorm:"column:reviewer_name;not null;default:''"`
	ReviewerEmail string     `gorm:"column:reviewer_email;not null;default:''"`
	Approved      bool       `gorm:"column:approved;not null;default:false"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular-free historical name.
func (Feedback) TableName() string {
	return "feedback"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved shipping address. The three-per-profile cap is an
// application rule enforced in the accounts service, not a constraint.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID `gorm:"column:profile_id;type:uuid;not null;index:addresses_profile_id_idx"`
	Text      string    `gorm:"column:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

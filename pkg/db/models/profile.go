package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// Profile holds the mutable account details attached 1:1 to a user.
// Created at signup, or lazily on first profile access for accounts
// that predate the profile table.
type Profile struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:profiles_user_id_key"`
	Phone       *string              `gorm:"column:phone"`
	AddressText *string              `gorm:"column:address_text"`
	Provider    enums.SignupProvider `gorm:"column:provider;not null;default:'manual'"`
	Addresses   []Address            `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

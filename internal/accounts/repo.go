package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
)

// Repository encapsulates user, profile, and address persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUserWithProfile inserts the user and their profile in one transaction.
func (r *Repository) CreateUserWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

// FindUserByID loads a user by primary key.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByIdentifier resolves a login identifier against username or
// email. Email matching is case-insensitive.
func (r *Repository) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR lower(email) = ?", identifier, strings.ToLower(identifier)).
		First(&user).
		Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameOrEmailTaken reports which of the two identifiers already
// belong to an existing account.
func (r *Repository) UsernameOrEmailTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var count int64
	if err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).
		Error; err != nil {
		return false, false, err
	}
	usernameTaken = count > 0

	if err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("lower(email) = ?", strings.ToLower(email)).
		Count(&count).
		Error; err != nil {
		return false, false, err
	}
	emailTaken = count > 0
	return usernameTaken, emailTaken, nil
}

// TouchLastLogin records the most recent successful login time.
func (r *Repository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).
		Error
}

// FindProfileByUserID loads the user's profile.
func (r *Repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).
		Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts a profile row.
func (r *Repository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// UpdateProfile persists the mutable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"phone":        profile.Phone,
			"address_text": profile.AddressText,
		}).
		Error
}

// CountAddresses returns how many saved addresses the profile holds.
func (r *Repository) CountAddresses(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("profile_id = ?", profileID).
		Count(&count).
		Error
	return count, err
}

// CreateAddress inserts a saved address.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// ListAddresses returns the profile's addresses oldest first.
func (r *Repository) ListAddresses(ctx context.Context, profileID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteAddress removes one address scoped to the owning profile.
// Returns false when no row matched.
func (r *Repository) DeleteAddress(ctx context.Context, profileID, addressID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", addressID, profileID).
		Delete(&models.Address{})
	return result.RowsAffected > 0, result.Error
}

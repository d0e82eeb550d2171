package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
)

// PendingSignup is the session blob between signup start and OTP
// verification. No user row exists until the code is verified.
type PendingSignup struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignupStartParams carries the first step of signup.
type SignupStartParams struct {
	Username string
	Email    string
	Password string
}

// UserDTO is the public account projection.
type UserDTO struct {
	ID       uuid.UUID      `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Role     enums.UserRole `json:"role"`
}

// TokenPairDTO carries a freshly minted access/refresh pair.
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResultDTO is returned from login, verify, and refresh.
type AuthResultDTO struct {
	User   UserDTO      `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}

// ProfileDTO is the account profile projection.
type ProfileDTO struct {
	Phone       *string              `json:"phone"`
	AddressText *string              `json:"address_text"`
	Provider    enums.SignupProvider `json:"provider"`
}

// UpdateProfileParams carries a profile update; nil fields are kept.
type UpdateProfileParams struct {
	Phone       *string
	AddressText *string
}

// AddressDTO is one saved address.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

func toProfileDTO(profile models.Profile) ProfileDTO {
	return ProfileDTO{
		Phone:       profile.Phone,
		AddressText: profile.AddressText,
		Provider:    profile.Provider,
	}
}

func toAddressDTO(address models.Address) AddressDTO {
	return AddressDTO{
		ID:        address.ID,
		Text:      address.Text,
		CreatedAt: address.CreatedAt,
	}
}

package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/auth"
	authsession "github.com/akashgupta/shopkart-backend/pkg/auth/session"
	"github.com/akashgupta/shopkart-backend/pkg/config"
	"github.com/akashgupta/shopkart-backend/pkg/db"
	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	"github.com/akashgupta/shopkart-backend/pkg/security"
	"github.com/akashgupta/shopkart-backend/pkg/session"
)

const (
	// MaxAddresses caps the address book per profile.
	MaxAddresses = 3

	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 8

	// pendingSignupTTL outlives the verification code so resend keeps
	// working after the code itself expires.
	pendingSignupTTL = 30 * time.Minute
)

type sessionStore interface {
	Get(ctx context.Context, sessionID, name string, dest any) error
	SetWithTTL(ctx context.Context, sessionID, name string, value any, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, name string) error
}

type refreshManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type mailSender interface {
	Send(ctx context.Context, toEmail, subject, plainBody string) error
}

// ServiceParams groups dependencies for the accounts service.
type ServiceParams struct {
	Repo     *Repository
	Sessions sessionStore
	Tokens   refreshManager
	Mailer   mailSender
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Signup   config.SignupConfig
}

// Service handles signup, authentication, and the profile surface.
type Service interface {
	StartSignup(ctx context.Context, sessionID string, params SignupStartParams) error
	VerifySignup(ctx context.Context, sessionID, code string) (AuthResultDTO, error)
	ResendSignup(ctx context.Context, sessionID string) error

	Login(ctx context.Context, identifier, password string) (AuthResultDTO, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, accessToken, refreshToken string) (AuthResultDTO, error)

	Profile(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (ProfileDTO, error)

	Addresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	AddAddress(ctx context.Context, userID uuid.UUID, text string) (AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo     *Repository
	sessions sessionStore
	tokens   refreshManager
	mailer   mailSender
	jwt      config.JWTConfig
	password config.PasswordConfig
	signup   config.SignupConfig
}

// NewService builds an accounts service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accounts repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh manager is required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mailer is required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		tokens:   params.Tokens,
		mailer:   params.Mailer,
		jwt:      params.JWT,
		password: params.Password,
		signup:   params.Signup,
	}, nil
}

// StartSignup validates the requested account, emails a verification
// code, and parks the pending signup in the session. No user row exists
// until the code is verified.
func (s *service) StartSignup(ctx context.Context, sessionID string, params SignupStartParams) error {
	username := strings.TrimSpace(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if username == "" || email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	if len(params.Password) < MinPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	usernameTaken, emailTaken, err := s.repo.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing accounts")
	}
	if usernameTaken {
		return pkgerrors.New(pkgerrors.CodeConflict, "username is already taken")
	}
	if emailTaken {
		return pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	}

	hash, err := security.HashPassword(params.Password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	code, err := security.GenerateOTP(s.signup.OTPLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}

	pending := PendingSignup{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Code:         code,
		ExpiresAt:    time.Now().Add(s.signup.OTPTTL),
	}
	if err := s.sessions.SetWithTTL(ctx, sessionID, session.KeySignupPending, pending, pendingSignupTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pending signup")
	}

	if err := s.sendVerificationCode(ctx, pending); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}
	return nil
}

// VerifySignup checks the code against the pending signup, creates the
// account, and logs the new user in.
func (s *service) VerifySignup(ctx context.Context, sessionID, code string) (AuthResultDTO, error) {
	pending, err := s.loadPendingSignup(ctx, sessionID)
	if err != nil {
		return AuthResultDTO{}, err
	}
	if time.Now().After(pending.ExpiresAt) {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "verification code has expired, request a new one")
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(strings.TrimSpace(code))) != 1 {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid verification code")
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	profile := models.Profile{
		ID:       uuid.New(),
		Provider: enums.SignupProviderManual,
	}
	if err := s.repo.CreateUserWithProfile(ctx, &user, &profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account already exists")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	if err := s.sessions.Delete(ctx, sessionID, session.KeySignupPending); err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear pending signup")
	}
	return s.issueTokens(ctx, user)
}

// ResendSignup regenerates the verification code in place, invalidating
// the previous one, and emails it again.
func (s *service) ResendSignup(ctx context.Context, sessionID string) error {
	pending, err := s.loadPendingSignup(ctx, sessionID)
	if err != nil {
		return err
	}

	code, err := security.GenerateOTP(s.signup.OTPLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}
	pending.Code = code
	pending.ExpiresAt = time.Now().Add(s.signup.OTPTTL)

	if err := s.sessions.SetWithTTL(ctx, sessionID, session.KeySignupPending, pending, pendingSignupTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pending signup")
	}
	if err := s.sendVerificationCode(ctx, pending); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}
	return nil
}

// Login authenticates by username or email. Failures are reported
// uniformly so callers cannot probe for registered accounts.
func (s *service) Login(ctx context.Context, identifier, password string) (AuthResultDTO, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	user, err := s.repo.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	return s.issueTokens(ctx, *user)
}

// Logout revokes the refresh session tied to the access token's jti.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.tokens.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Refresh rotates the refresh token and mints a new access token. The
// expired access token is accepted only to read its jti.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (AuthResultDTO, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	user, err := s.repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	newAccessID, newRefresh, err := s.tokens.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, authsession.ErrInvalidRefreshToken) {
			return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	access, err := auth.MintAccessToken(s.jwt, time.Now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		JTI:      newAccessID,
	})
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return AuthResultDTO{
		User:   toUserDTO(*user),
		Tokens: TokenPairDTO{AccessToken: access, RefreshToken: newRefresh},
	}, nil
}

// Profile returns the user's profile, creating an empty one for
// accounts that predate the profile table.
func (s *service) Profile(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	return toProfileDTO(*profile), nil
}

// UpdateProfile applies the provided fields; nil fields are left alone.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (ProfileDTO, error) {
	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}

	if params.Phone != nil {
		profile.Phone = params.Phone
	}
	if params.AddressText != nil {
		profile.AddressText = params.AddressText
	}
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return toProfileDTO(*profile), nil
}

// Addresses lists the user's saved addresses, oldest first.
func (s *service) Addresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAddresses(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	result := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, toAddressDTO(row))
	}
	return result, nil
}

// AddAddress saves a new address, enforcing the per-profile cap.
func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, text string) (AddressDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return AddressDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "address text is required")
	}

	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return AddressDTO{}, err
	}

	count, err := s.repo.CountAddresses(ctx, profile.ID)
	if err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
	}
	if count >= MaxAddresses {
		return AddressDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("address book is full, at most %d addresses are allowed", MaxAddresses))
	}

	address := models.Address{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Text:      text,
	}
	if err := s.repo.CreateAddress(ctx, &address); err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	return toAddressDTO(address), nil
}

// DeleteAddress removes one address from the user's book.
func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	profile, err := s.getOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteAddress(ctx, profile.ID, addressID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) getOrCreateProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	created := models.Profile{
		ID:       uuid.New(),
		UserID:   userID,
		Provider: enums.SignupProviderManual,
	}
	if err := s.repo.CreateProfile(ctx, &created); err != nil {
		if db.IsUniqueViolation(err, "") {
			// lost the race to a concurrent request
			return s.repo.FindProfileByUserID(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return &created, nil
}

func (s *service) loadPendingSignup(ctx context.Context, sessionID string) (PendingSignup, error) {
	var pending PendingSignup
	if err := s.sessions.Get(ctx, sessionID, session.KeySignupPending, &pending); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return PendingSignup{}, pkgerrors.New(pkgerrors.CodeValidation, "no signup in progress for this session")
		}
		return PendingSignup{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending signup")
	}
	return pending, nil
}

func (s *service) sendVerificationCode(ctx context.Context, pending PendingSignup) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour ShopKart verification code is %s. It expires in %s.\n\nIf you did not request this, ignore this email.",
		pending.Username, pending.Code, s.signup.OTPTTL,
	)
	return s.mailer.Send(ctx, pending.Email, "Your ShopKart verification code", body)
}

func (s *service) issueTokens(ctx context.Context, user models.User) (AuthResultDTO, error) {
	accessID := authsession.NewAccessID()
	access, err := auth.MintAccessToken(s.jwt, time.Now(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		JTI:      accessID,
	})
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.tokens.Generate(ctx, accessID)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refresh session")
	}
	return AuthResultDTO{
		User:   toUserDTO(user),
		Tokens: TokenPairDTO{AccessToken: access, RefreshToken: refresh},
	}, nil
}

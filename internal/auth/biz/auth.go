package biz

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestkeep/nestkeep-backend/internal/auth"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Account lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute

	MinPasswordLength = 8
	BcryptCost        = 12
)

// User is the account record.
type User struct {
	ID                    string
	Name                  string
	Email                 string
	PasswordHash          string
	FailedLoginAttempts   int
	LockedUntil           *time.Time
	LastLoginAt           *time.Time
	LastLoginIP           *string
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// UserRepo is the persistence contract for accounts.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateLoginInfo(ctx context.Context, userID string, ip string) error
	// IncrementFailedLogins returns the count after the increment so the
	// lockout threshold is checked against one well-defined number.
	IncrementFailedLogins(ctx context.Context, userID string) (int, error)
	ResetFailedLogins(ctx context.Context, userID string) error
	LockAccount(ctx context.Context, userID string, until time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// TokenPair is an access token plus its refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult is a successful authentication.
type LoginResult struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// AuthUseCase contains authentication business logic.
type AuthUseCase struct {
	userRepo   UserRepo
	jwtManager *auth.JWTManager
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(userRepo UserRepo, jwtManager *auth.JWTManager) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register creates an account.
func (uc *AuthUseCase) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.New(apperrors.ErrAuthInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.New(apperrors.ErrAuthWeakPassword)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.ErrAuthEmailExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password. Failures count toward the
// lockout; the response never says which of email or password was wrong.
func (uc *AuthUseCase) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrAuthInvalidCredentials)
	}

	now := time.Now().UTC()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, apperrors.New(apperrors.ErrTooManyRequests, "account temporarily locked")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if attempts, ierr := uc.userRepo.IncrementFailedLogins(ctx, user.ID); ierr == nil &&
			attempts >= MaxFailedLogins {
			_ = uc.userRepo.LockAccount(ctx, user.ID, now.Add(LockoutDuration))
		}
		return nil, apperrors.New(apperrors.ErrAuthInvalidCredentials)
	}

	if err := uc.userRepo.ResetFailedLogins(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := uc.userRepo.UpdateLoginInfo(ctx, user.ID, ip); err != nil {
		return nil, err
	}

	tokens, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// RefreshAccessToken rotates the token pair. The old refresh token is
// invalid after this call.
func (uc *AuthUseCase) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.New(apperrors.ErrAuthInvalidToken)
	}

	user, err := uc.userRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrAuthInvalidToken)
	}
	if user.RefreshTokenExpiresAt == nil || time.Now().UTC().After(*user.RefreshTokenExpiresAt) {
		return nil, apperrors.New(apperrors.ErrAuthTokenExpired)
	}

	return uc.issueTokens(ctx, user)
}

// Logout invalidates the refresh token. The access token keeps working
// until it expires, which is at most fifteen minutes.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string) error {
	return uc.userRepo.ClearRefreshToken(ctx, userID)
}

// GetUser returns an account by id.
func (uc *AuthUseCase) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrAuthUserNotFound)
	}
	return user, nil
}

// DisplayName resolves a user id to their name (invite mail).
func (uc *AuthUseCase) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := uc.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func (uc *AuthUseCase) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := uc.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	refreshToken, err := uc.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	expiresAt := time.Now().UTC().Add(auth.RefreshTokenDuration)
	user.RefreshToken = &refreshToken
	user.RefreshTokenExpiresAt = &expiresAt
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(auth.AccessTokenDuration.Seconds()),
	}, nil
}

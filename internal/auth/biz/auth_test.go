package biz

import (
	"context"
	"testing"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/auth"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*User // keyed by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByRefreshToken(_ context.Context, token string) (*User, error) {
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateLoginInfo(_ context.Context, userID string, ip string) error {
	now := time.Now().UTC()
	f.users[userID].LastLoginAt = &now
	f.users[userID].LastLoginIP = &ip
	return nil
}

func (f *fakeUserRepo) IncrementFailedLogins(_ context.Context, userID string) (int, error) {
	f.users[userID].FailedLoginAttempts++
	return f.users[userID].FailedLoginAttempts, nil
}

func (f *fakeUserRepo) ResetFailedLogins(_ context.Context, userID string) error {
	f.users[userID].FailedLoginAttempts = 0
	f.users[userID].LockedUntil = nil
	return nil
}

func (f *fakeUserRepo) LockAccount(_ context.Context, userID string, until time.Time) error {
	f.users[userID].LockedUntil = &until
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(_ context.Context, userID string) error {
	f.users[userID].RefreshToken = nil
	f.users[userID].RefreshTokenExpiresAt = nil
	return nil
}

func newTestAuth() (*AuthUseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthUseCase(repo, auth.NewJWTManager("test-secret")), repo
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantCode int
	}{
		{"missing name", "", "a@example.com", "password123", apperrors.ErrInvalidParams},
		{"bad email", "Sam", "not-an-email", "password123", apperrors.ErrAuthInvalidEmail},
		{"short password", "Sam", "a@example.com", "short", apperrors.ErrAuthWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(ctx, tt.userName, tt.email, tt.password)
			assert.True(t, apperrors.Is(err, tt.wantCode))
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	user, err := uc.Register(ctx, "Sam", "Sam@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)

	result, err := uc.Login(ctx, "sam@example.com", "password123", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	// Duplicate registration is rejected.
	_, err = uc.Register(ctx, "Sam", "sam@example.com", "password123")
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthEmailExists))
}

func TestLoginWrongPasswordLocksAccount(t *testing.T) {
	uc, repo := newTestAuth()
	ctx := context.Background()

	user, err := uc.Register(ctx, "Sam", "sam@example.com", "password123")
	require.NoError(t, err)

	for i := 0; i < MaxFailedLogins-1; i++ {
		_, err = uc.Login(ctx, "sam@example.com", "wrong", "10.0.0.1")
		assert.True(t, apperrors.Is(err, apperrors.ErrAuthInvalidCredentials))
		assert.Nil(t, repo.users[user.ID].LockedUntil,
			"lock must not engage before the threshold")
	}

	_, err = uc.Login(ctx, "sam@example.com", "wrong", "10.0.0.1")
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthInvalidCredentials))
	require.NotNil(t, repo.users[user.ID].LockedUntil)

	// Even the correct password is refused while locked.
	_, err = uc.Login(ctx, "sam@example.com", "password123", "10.0.0.1")
	assert.True(t, apperrors.Is(err, apperrors.ErrTooManyRequests))
}

func TestLoginUnknownUser(t *testing.T) {
	uc, _ := newTestAuth()

	_, err := uc.Login(context.Background(), "nobody@example.com", "password123", "10.0.0.1")
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthInvalidCredentials),
		"unknown email and wrong password must be indistinguishable")
}

func TestRefreshRotatesToken(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	_, err := uc.Register(ctx, "Sam", "sam@example.com", "password123")
	require.NoError(t, err)
	result, err := uc.Login(ctx, "sam@example.com", "password123", "10.0.0.1")
	require.NoError(t, err)

	old := result.Tokens.RefreshToken
	pair, err := uc.RefreshAccessToken(ctx, old)
	require.NoError(t, err)
	assert.NotEqual(t, old, pair.RefreshToken)

	_, err = uc.RefreshAccessToken(ctx, old)
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthInvalidToken))
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	user, err := uc.Register(ctx, "Sam", "sam@example.com", "password123")
	require.NoError(t, err)
	result, err := uc.Login(ctx, "sam@example.com", "password123", "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, user.ID))

	_, err = uc.RefreshAccessToken(ctx, result.Tokens.RefreshToken)
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthInvalidToken))
}

package data

import (
	"context"
	"errors"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/auth/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// UserPO is the users table model.
type UserPO struct {
	ID                    string     `gorm:"type:uuid;primarykey"`
	Name                  string     `gorm:"size:100;not null"`
	Email                 string     `gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL"`
	PasswordHash          string     `gorm:"size:255;not null"`
	FailedLoginAttempts   int        `gorm:"not null;default:0"`
	LockedUntil           *time.Time `gorm:""`
	LastLoginAt           *time.Time `gorm:""`
	LastLoginIP           *string    `gorm:"size:45"`
	RefreshToken          *string    `gorm:"size:64;index:idx_users_refresh_token"`
	RefreshTokenExpiresAt *time.Time `gorm:""`
	CreatedAt             time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	DeletedAt             gorm.DeletedAt `gorm:"index:idx_users_deleted_at"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo is the GORM-backed account repository.
type UserRepo struct {
	db *database.DB
}

// NewUserRepo creates the account repository
func NewUserRepo(db *database.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *biz.User) error {
	err := r.db.WithContext(ctx).GetDB().Create(toUserPO(user)).Error
	if database.IsDuplicateKeyError(err) {
		return apperrors.New(apperrors.ErrAuthEmailExists)
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*biz.User, error) {
	return r.getOne(ctx, "refresh_token = ?", refreshToken)
}

func (r *UserRepo) Update(ctx context.Context, user *biz.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).GetDB().
		Model(&UserPO{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":                     user.Name,
			"email":                    user.Email,
			"password_hash":            user.PasswordHash,
			"refresh_token":            user.RefreshToken,
			"refresh_token_expires_at": user.RefreshTokenExpiresAt,
			"updated_at":               user.UpdatedAt,
		}).Error
}

func (r *UserRepo) UpdateLoginInfo(ctx context.Context, userID string, ip string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).GetDB().
		Model(&UserPO{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_login_ip": ip,
		}).Error
}

func (r *UserRepo) IncrementFailedLogins(ctx context.Context, userID string) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).GetDB().
		Raw(`UPDATE users
		     SET failed_login_attempts = failed_login_attempts + 1
		     WHERE id = ? AND deleted_at IS NULL
		     RETURNING failed_login_attempts`, userID).
		Scan(&attempts).Error
	return attempts, err
}

func (r *UserRepo) ResetFailedLogins(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).GetDB().
		Model(&UserPO{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error
}

func (r *UserRepo) LockAccount(ctx context.Context, userID string, until time.Time) error {
	return r.db.WithContext(ctx).GetDB().
		Model(&UserPO{}).
		Where("id = ?", userID).
		Update("locked_until", until).Error
}

func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).GetDB().
		Model(&UserPO{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            nil,
			"refresh_token_expires_at": nil,
		}).Error
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (*biz.User, error) {
	var po UserPO
	err := r.db.WithContext(ctx).GetDB().Where(query, arg).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toUser(&po), nil
}

func toUserPO(u *biz.User) *UserPO {
	return &UserPO{
		ID:                    u.ID,
		Name:                  u.Name,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		FailedLoginAttempts:   u.FailedLoginAttempts,
		LockedUntil:           u.LockedUntil,
		LastLoginAt:           u.LastLoginAt,
		LastLoginIP:           u.LastLoginIP,
		RefreshToken:          u.RefreshToken,
		RefreshTokenExpiresAt: u.RefreshTokenExpiresAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func toUser(po *UserPO) *biz.User {
	return &biz.User{
		ID:                    po.ID,
		Name:                  po.Name,
		Email:                 po.Email,
		PasswordHash:          po.PasswordHash,
		FailedLoginAttempts:   po.FailedLoginAttempts,
		LockedUntil:           po.LockedUntil,
		LastLoginAt:           po.LastLoginAt,
		LastLoginIP:           po.LastLoginIP,
		RefreshToken:          po.RefreshToken,
		RefreshTokenExpiresAt: po.RefreshTokenExpiresAt,
		CreatedAt:             po.CreatedAt,
		UpdatedAt:             po.UpdatedAt,
	}
}

package data

import (
	"context"
	"errors"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/household/biz"
	"github.com/nestkeep/nestkeep-backend/internal/household/types"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// HouseholdPO is the households table model.
type HouseholdPO struct {
	ID        string    `gorm:"type:uuid;primarykey"`
	Name      string    `gorm:"size:100;not null"`
	CreatedBy string    `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (HouseholdPO) TableName() string {
	return "households"
}

// MembershipPO is the household_members table model. The partial unique
// index allows a user to rejoin a household after revocation while
// keeping at most one active membership.
type MembershipPO struct {
	ID          string     `gorm:"type:uuid;primarykey"`
	HouseholdID string     `gorm:"type:uuid;not null;index:idx_members_household_id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_members_active_user,where:active"`
	Role        string     `gorm:"size:20;not null"`
	Active      bool       `gorm:"not null;default:true"`
	JoinedAt    time.Time  `gorm:"not null"`
	RevokedAt   *time.Time `gorm:""`
}

func (MembershipPO) TableName() string {
	return "household_members"
}

// InvitePO is the household_invites table model.
type InvitePO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	HouseholdID string    `gorm:"type:uuid;not null;index:idx_invites_household_id"`
	Email       string    `gorm:"size:255;not null;index:idx_invites_email"`
	Token       string    `gorm:"size:64;not null;uniqueIndex:idx_invites_token"`
	InvitedBy   string    `gorm:"type:uuid;not null"`
	Status      string    `gorm:"size:20;not null;default:'pending'"`
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvitePO) TableName() string {
	return "household_invites"
}

// HouseholdRepo is the GORM-backed household repository.
type HouseholdRepo struct {
	db *database.DB
}

// NewHouseholdRepo creates the household repository
func NewHouseholdRepo(db *database.DB) biz.HouseholdRepo {
	return &HouseholdRepo{db: db}
}

func (r *HouseholdRepo) CreateWithOwner(ctx context.Context, h *types.Household, owner *types.Membership) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Create(toHouseholdPO(h)).Error; err != nil {
			return err
		}
		return tx.Create(toMembershipPO(owner)).Error
	})
}

func (r *HouseholdRepo) GetByID(ctx context.Context, id string) (*types.Household, error) {
	var po HouseholdPO
	err := r.db.WithContext(ctx).GetDB().First(&po, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.ErrHouseholdNotFound)
	}
	if err != nil {
		return nil, err
	}
	return toHousehold(&po), nil
}

func (r *HouseholdRepo) Update(ctx context.Context, h *types.Household) error {
	return r.db.WithContext(ctx).GetDB().
		Model(&HouseholdPO{}).
		Where("id = ?", h.ID).
		Updates(map[string]interface{}{
			"name":       h.Name,
			"updated_at": h.UpdatedAt,
		}).Error
}

// GetMembershipByUser returns the user's most relevant membership: the
// active one if any, otherwise the most recently revoked one. A nil
// result means the user never belonged anywhere.
func (r *HouseholdRepo) GetMembershipByUser(ctx context.Context, userID string) (*types.Membership, error) {
	var po MembershipPO
	err := r.db.WithContext(ctx).GetDB().
		Where("user_id = ?", userID).
		Order("active DESC").
		Order("joined_at DESC").
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toMembership(&po), nil
}

func (r *HouseholdRepo) ListMembers(ctx context.Context, householdID string) ([]*types.Member, error) {
	type memberRow struct {
		UserID   string    `gorm:"column:user_id"`
		Email    string    `gorm:"column:email"`
		Name     string    `gorm:"column:name"`
		Role     string    `gorm:"column:role"`
		Active   bool      `gorm:"column:active"`
		JoinedAt time.Time `gorm:"column:joined_at"`
	}

	var rows []memberRow
	err := r.db.WithContext(ctx).GetDB().
		Table("household_members").
		Select("household_members.user_id, users.email, users.name, household_members.role, household_members.active, household_members.joined_at").
		Joins("JOIN users ON users.id = household_members.user_id").
		Where("household_members.household_id = ?", householdID).
		Order("household_members.joined_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]*types.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, &types.Member{
			UserID:   row.UserID,
			Email:    row.Email,
			Name:     row.Name,
			Role:     types.Role(row.Role),
			Active:   row.Active,
			JoinedAt: row.JoinedAt,
		})
	}
	return members, nil
}

func (r *HouseholdRepo) RevokeMembership(ctx context.Context, householdID, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).GetDB().
		Model(&MembershipPO{}).
		Where("household_id = ? AND user_id = ? AND active", householdID, userID).
		Updates(map[string]interface{}{
			"active":     false,
			"revoked_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrNotFound, "member not found")
	}
	return nil
}

func (r *HouseholdRepo) CreateInvite(ctx context.Context, inv *types.Invite) error {
	err := r.db.WithContext(ctx).GetDB().Create(toInvitePO(inv)).Error
	if database.IsDuplicateKeyError(err) {
		return apperrors.New(apperrors.ErrInviteExists)
	}
	return err
}

func (r *HouseholdRepo) GetPendingInvite(ctx context.Context, householdID, email string) (*types.Invite, error) {
	var po InvitePO
	err := r.db.WithContext(ctx).GetDB().
		Where("household_id = ? AND email = ? AND status = ?", householdID, email, string(types.InvitePending)).
		Order("created_at DESC").
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toInvite(&po), nil
}

func (r *HouseholdRepo) GetInviteByToken(ctx context.Context, token string) (*types.Invite, error) {
	var po InvitePO
	err := r.db.WithContext(ctx).GetDB().
		Where("token = ?", token).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toInvite(&po), nil
}

func (r *HouseholdRepo) AcceptInvite(ctx context.Context, inviteID string, m *types.Membership) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		res := tx.Model(&InvitePO{}).
			Where("id = ? AND status = ?", inviteID, string(types.InvitePending)).
			Update("status", string(types.InviteAccepted))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.ErrNotFound, "invite not found")
		}
		return tx.Create(toMembershipPO(m)).Error
	})
}

func toHouseholdPO(h *types.Household) *HouseholdPO {
	return &HouseholdPO{
		ID:        h.ID,
		Name:      h.Name,
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toHousehold(po *HouseholdPO) *types.Household {
	return &types.Household{
		ID:        po.ID,
		Name:      po.Name,
		CreatedBy: po.CreatedBy,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

func toMembershipPO(m *types.Membership) *MembershipPO {
	return &MembershipPO{
		ID:          m.ID,
		HouseholdID: m.HouseholdID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		Active:      m.Active,
		JoinedAt:    m.JoinedAt,
		RevokedAt:   m.RevokedAt,
	}
}

func toMembership(po *MembershipPO) *types.Membership {
	return &types.Membership{
		ID:          po.ID,
		HouseholdID: po.HouseholdID,
		UserID:      po.UserID,
		Role:        types.Role(po.Role),
		Active:      po.Active,
		JoinedAt:    po.JoinedAt,
		RevokedAt:   po.RevokedAt,
	}
}

func toInvitePO(inv *types.Invite) *InvitePO {
	return &InvitePO{
		ID:          inv.ID,
		HouseholdID: inv.HouseholdID,
		Email:       inv.Email,
		Token:       inv.Token,
		InvitedBy:   inv.InvitedBy,
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func toInvite(po *InvitePO) *types.Invite {
	return &types.Invite{
		ID:          po.ID,
		HouseholdID: po.HouseholdID,
		Email:       po.Email,
		Token:       po.Token,
		InvitedBy:   po.InvitedBy,
		Status:      types.InviteStatus(po.Status),
		ExpiresAt:   po.ExpiresAt,
		CreatedAt:   po.CreatedAt,
	}
}

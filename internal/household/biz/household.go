package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestkeep/nestkeep-backend/internal/household/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// HouseholdRepo is the persistence contract for households, memberships
// and invites. CreateWithOwner and AcceptInvite are transactional on the
// repo side so a half-created tenancy can never be observed.
type HouseholdRepo interface {
	CreateWithOwner(ctx context.Context, h *types.Household, owner *types.Membership) error
	GetByID(ctx context.Context, id string) (*types.Household, error)
	Update(ctx context.Context, h *types.Household) error

	GetMembershipByUser(ctx context.Context, userID string) (*types.Membership, error)
	ListMembers(ctx context.Context, householdID string) ([]*types.Member, error)
	RevokeMembership(ctx context.Context, householdID, userID string, at time.Time) error

	CreateInvite(ctx context.Context, inv *types.Invite) error
	GetPendingInvite(ctx context.Context, householdID, email string) (*types.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*types.Invite, error)
	AcceptInvite(ctx context.Context, inviteID string, m *types.Membership) error
}

// InviteMailer delivers invitation mail.
type InviteMailer interface {
	SendInvite(ctx context.Context, to, householdName, inviterName string) error
}

// MemberDirectory resolves a user id to a display name for invite mail.
type MemberDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// HouseholdUseCase contains business logic for households and
// memberships. It also implements the tenant guard used by search,
// inventory and export.
type HouseholdUseCase struct {
	repo      HouseholdRepo
	mailer    InviteMailer
	directory MemberDirectory
	logger    *logger.Logger
}

// NewHouseholdUseCase creates a new household use case
func NewHouseholdUseCase(repo HouseholdRepo, mailer InviteMailer, directory MemberDirectory, log *logger.Logger) *HouseholdUseCase {
	return &HouseholdUseCase{
		repo:      repo,
		mailer:    mailer,
		directory: directory,
		logger:    log,
	}
}

// ResolveActiveHousehold maps a caller to their single active household.
// A revoked membership reports revoked, never "no membership", so the
// caller can distinguish lost access from absent access.
func (uc *HouseholdUseCase) ResolveActiveHousehold(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.New(apperrors.ErrUnauthorized)
	}
	m, err := uc.repo.GetMembershipByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", apperrors.New(apperrors.ErrHouseholdNoMembership)
	}
	if !m.Active {
		return "", apperrors.New(apperrors.ErrMembershipRevoked)
	}
	return m.HouseholdID, nil
}

// CreateHousehold creates a household with the caller as owner. A caller
// who already belongs to a household cannot create another one.
func (uc *HouseholdUseCase) CreateHousehold(ctx context.Context, userID, name string) (*types.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > types.MaxHouseholdNameLength {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "household name must be 1-100 characters")
	}

	existing, err := uc.repo.GetMembershipByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Active {
		return nil, apperrors.New(apperrors.ErrConflict, "user already belongs to a household")
	}

	now := time.Now().UTC()
	h := &types.Household{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &types.Membership{
		ID:          uuid.New().String(),
		HouseholdID: h.ID,
		UserID:      userID,
		Role:        types.RoleOwner,
		Active:      true,
		JoinedAt:    now,
	}
	if err := uc.repo.CreateWithOwner(ctx, h, owner); err != nil {
		return nil, err
	}

	uc.logger.WithContext(ctx).Info("household created",
		zap.String("household_id", h.ID),
		zap.String("owner_id", userID),
	)
	return h, nil
}

// GetMyHousehold returns the caller's household.
func (uc *HouseholdUseCase) GetMyHousehold(ctx context.Context, userID string) (*types.Household, error) {
	householdID, err := uc.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.repo.GetByID(ctx, householdID)
}

// UpdateHousehold renames the household. Owner only.
func (uc *HouseholdUseCase) UpdateHousehold(ctx context.Context, userID, name string) (*types.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > types.MaxHouseholdNameLength {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "household name must be 1-100 characters")
	}

	m, err := uc.requireOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, err := uc.repo.GetByID(ctx, m.HouseholdID)
	if err != nil {
		return nil, err
	}
	h.Name = name
	h.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListMembers lists the caller's household members, revoked included.
func (uc *HouseholdUseCase) ListMembers(ctx context.Context, userID string) ([]*types.Member, error) {
	householdID, err := uc.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListMembers(ctx, householdID)
}

// InviteMember mails an invitation. Owner only. Mail delivery failure
// does not roll back the invite: the token stays valid and delivery can
// be retried by inviting again after the pending invite is gone.
func (uc *HouseholdUseCase) InviteMember(ctx context.Context, userID, email string) (*types.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, apperrors.New(apperrors.ErrAuthInvalidEmail)
	}

	m, err := uc.requireOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.repo.GetPendingInvite(ctx, m.HouseholdID, email)
	if err != nil {
		return nil, err
	}
	if pending != nil && !pending.Expired(time.Now().UTC()) {
		return nil, apperrors.New(apperrors.ErrInviteExists)
	}

	now := time.Now().UTC()
	inv := &types.Invite{
		ID:          uuid.New().String(),
		HouseholdID: m.HouseholdID,
		Email:       email,
		Token:       uuid.New().String(),
		InvitedBy:   userID,
		Status:      types.InvitePending,
		ExpiresAt:   now.Add(types.InviteTTL),
		CreatedAt:   now,
	}
	if err := uc.repo.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}

	h, err := uc.repo.GetByID(ctx, m.HouseholdID)
	if err != nil {
		return nil, err
	}
	inviterName, err := uc.directory.DisplayName(ctx, userID)
	if err != nil {
		inviterName = "A household member"
	}
	if err := uc.mailer.SendInvite(ctx, email, h.Name, inviterName); err != nil {
		uc.logger.WithContext(ctx).Warn("invite mail delivery failed",
			zap.String("invite_id", inv.ID),
			zap.Error(err),
		)
	}
	return inv, nil
}

// AcceptInvite joins the caller to the inviting household.
func (uc *HouseholdUseCase) AcceptInvite(ctx context.Context, userID, token string) (*types.Membership, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "invite token is required")
	}

	existing, err := uc.repo.GetMembershipByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Active {
		return nil, apperrors.New(apperrors.ErrConflict, "user already belongs to a household")
	}

	inv, err := uc.repo.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.Status != types.InvitePending {
		return nil, apperrors.New(apperrors.ErrNotFound, "invite not found")
	}
	if inv.Expired(time.Now().UTC()) {
		return nil, apperrors.New(apperrors.ErrNotFound, "invite has expired")
	}

	now := time.Now().UTC()
	m := &types.Membership{
		ID:          uuid.New().String(),
		HouseholdID: inv.HouseholdID,
		UserID:      userID,
		Role:        types.RoleMember,
		Active:      true,
		JoinedAt:    now,
	}
	if err := uc.repo.AcceptInvite(ctx, inv.ID, m); err != nil {
		return nil, err
	}

	uc.logger.WithContext(ctx).Info("invite accepted",
		zap.String("household_id", inv.HouseholdID),
		zap.String("user_id", userID),
	)
	return m, nil
}

// RevokeMembership deactivates a member. Owner only; owners cannot
// revoke themselves.
func (uc *HouseholdUseCase) RevokeMembership(ctx context.Context, ownerID, memberUserID string) error {
	if ownerID == memberUserID {
		return apperrors.New(apperrors.ErrInvalidParams, "owners cannot revoke their own membership")
	}

	owner, err := uc.requireOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	target, err := uc.repo.GetMembershipByUser(ctx, memberUserID)
	if err != nil {
		return err
	}
	if target == nil || !target.Active || target.HouseholdID != owner.HouseholdID {
		return apperrors.New(apperrors.ErrNotFound, "member not found")
	}

	return uc.repo.RevokeMembership(ctx, owner.HouseholdID, memberUserID, time.Now().UTC())
}

// IsOwner reports whether the caller owns their active household.
func (uc *HouseholdUseCase) IsOwner(ctx context.Context, userID string) (bool, error) {
	m, err := uc.repo.GetMembershipByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Active && m.Role == types.RoleOwner, nil
}

func (uc *HouseholdUseCase) requireOwner(ctx context.Context, userID string) (*types.Membership, error) {
	m, err := uc.repo.GetMembershipByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.New(apperrors.ErrHouseholdNoMembership)
	}
	if !m.Active {
		return nil, apperrors.New(apperrors.ErrMembershipRevoked)
	}
	if m.Role != types.RoleOwner {
		return nil, apperrors.New(apperrors.ErrHouseholdNotOwner)
	}
	return m, nil
}

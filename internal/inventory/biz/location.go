package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
)

// LocationRepo is the persistence contract for the storage tree.
type LocationRepo interface {
	Create(ctx context.Context, loc *types.Location) error
	GetByID(ctx context.Context, householdID, id string) (*types.Location, error)
	ListByHousehold(ctx context.Context, householdID string) ([]*types.Location, error)
	Update(ctx context.Context, loc *types.Location) error
	Delete(ctx context.Context, householdID, id string) error
	CountChildren(ctx context.Context, householdID, id string) (int64, error)
	CountItems(ctx context.Context, householdID, id string) (int64, error)
}

// LocationUseCase contains business logic for storage locations.
type LocationUseCase struct {
	guard MembershipResolver
	repo  LocationRepo
}

// NewLocationUseCase creates the location use case
func NewLocationUseCase(guard MembershipResolver, repo LocationRepo) *LocationUseCase {
	return &LocationUseCase{guard: guard, repo: repo}
}

// CreateLocation adds a node to the caller's storage tree.
func (uc *LocationUseCase) CreateLocation(ctx context.Context, userID, name, parentID string) (*types.Location, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > types.MaxNameLength {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "location name must be 1-200 characters")
	}

	if parentID != "" {
		depth, err := uc.depthOf(ctx, householdID, parentID)
		if err != nil {
			return nil, err
		}
		if depth >= types.MaxLocationDepth {
			return nil, apperrors.New(apperrors.ErrInvalidParams, "location tree is too deep")
		}
	}

	now := time.Now().UTC()
	loc := &types.Location{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Name:        name,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// ListLocations returns every node of the caller's storage tree.
func (uc *LocationUseCase) ListLocations(ctx context.Context, userID string) ([]*types.Location, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListByHousehold(ctx, householdID)
}

// UpdateLocation renames or reparents a node. Moving a node under its
// own subtree is rejected.
func (uc *LocationUseCase) UpdateLocation(ctx context.Context, userID, locationID, name, parentID string) (*types.Location, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > types.MaxNameLength {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "location name must be 1-200 characters")
	}

	loc, err := uc.getScoped(ctx, householdID, locationID)
	if err != nil {
		return nil, err
	}

	if parentID != "" && parentID != loc.ParentID {
		if parentID == locationID {
			return nil, apperrors.New(apperrors.ErrInvalidParams, "location cannot be its own parent")
		}
		ancestor := parentID
		for ancestor != "" {
			p, err := uc.getScoped(ctx, householdID, ancestor)
			if err != nil {
				return nil, err
			}
			if p.ParentID == locationID {
				return nil, apperrors.New(apperrors.ErrInvalidParams, "cannot move a location into its own subtree")
			}
			ancestor = p.ParentID
		}
		depth, err := uc.depthOf(ctx, householdID, parentID)
		if err != nil {
			return nil, err
		}
		if depth >= types.MaxLocationDepth {
			return nil, apperrors.New(apperrors.ErrInvalidParams, "location tree is too deep")
		}
	}

	loc.Name = name
	loc.ParentID = parentID
	loc.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// DeleteLocation removes an empty leaf node. A node with children or
// items is refused so nothing silently loses its place.
func (uc *LocationUseCase) DeleteLocation(ctx context.Context, userID, locationID string) error {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := uc.getScoped(ctx, householdID, locationID); err != nil {
		return err
	}

	children, err := uc.repo.CountChildren(ctx, householdID, locationID)
	if err != nil {
		return err
	}
	items, err := uc.repo.CountItems(ctx, householdID, locationID)
	if err != nil {
		return err
	}
	if children > 0 || items > 0 {
		return apperrors.New(apperrors.ErrLocationNotEmpty)
	}

	return uc.repo.Delete(ctx, householdID, locationID)
}

// PathOf returns the breadcrumb from the root to the location, e.g.
// "Garage > Shelf B > Blue Box".
func (uc *LocationUseCase) PathOf(ctx context.Context, userID, locationID string) (string, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return "", err
	}
	return uc.pathOf(ctx, householdID, locationID)
}

func (uc *LocationUseCase) pathOf(ctx context.Context, householdID, locationID string) (string, error) {
	var parts []string
	id := locationID
	for i := 0; id != "" && i < types.MaxLocationDepth; i++ {
		loc, err := uc.getScoped(ctx, householdID, id)
		if err != nil {
			return "", err
		}
		parts = append([]string{loc.Name}, parts...)
		id = loc.ParentID
	}
	return strings.Join(parts, " > "), nil
}

func (uc *LocationUseCase) depthOf(ctx context.Context, householdID, locationID string) (int, error) {
	depth := 0
	id := locationID
	for id != "" {
		loc, err := uc.getScoped(ctx, householdID, id)
		if err != nil {
			return 0, err
		}
		depth++
		if depth > types.MaxLocationDepth {
			break
		}
		id = loc.ParentID
	}
	return depth, nil
}

func (uc *LocationUseCase) getScoped(ctx context.Context, householdID, id string) (*types.Location, error) {
	loc, err := uc.repo.GetByID(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperrors.New(apperrors.ErrLocationNotFound)
	}
	return loc, nil
}

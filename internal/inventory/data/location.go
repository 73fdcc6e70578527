package data

import (
	"context"
	"errors"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/inventory/biz"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// LocationPO is the locations table model.
type LocationPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	HouseholdID string    `gorm:"type:uuid;not null;index:idx_locations_household_id"`
	Name        string    `gorm:"size:200;not null"`
	ParentID    *string   `gorm:"type:uuid;index:idx_locations_parent_id"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LocationPO) TableName() string {
	return "locations"
}

// LocationRepo is the GORM-backed location repository.
type LocationRepo struct {
	db *database.DB
}

// NewLocationRepo creates the location repository
func NewLocationRepo(db *database.DB) biz.LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Create(ctx context.Context, loc *types.Location) error {
	return r.db.WithContext(ctx).GetDB().Create(toLocationPO(loc)).Error
}

func (r *LocationRepo) GetByID(ctx context.Context, householdID, id string) (*types.Location, error) {
	var po LocationPO
	err := r.db.WithContext(ctx).GetDB().
		Where("household_id = ? AND id = ?", householdID, id).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toLocation(&po), nil
}

func (r *LocationRepo) ListByHousehold(ctx context.Context, householdID string) ([]*types.Location, error) {
	var pos []LocationPO
	err := r.db.WithContext(ctx).GetDB().
		Where("household_id = ?", householdID).
		Order("name").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	locs := make([]*types.Location, 0, len(pos))
	for i := range pos {
		locs = append(locs, toLocation(&pos[i]))
	}
	return locs, nil
}

func (r *LocationRepo) Update(ctx context.Context, loc *types.Location) error {
	var parentID *string
	if loc.ParentID != "" {
		parentID = &loc.ParentID
	}
	return r.db.WithContext(ctx).GetDB().
		Model(&LocationPO{}).
		Where("household_id = ? AND id = ?", loc.HouseholdID, loc.ID).
		Updates(map[string]interface{}{
			"name":       loc.Name,
			"parent_id":  parentID,
			"updated_at": loc.UpdatedAt,
		}).Error
}

func (r *LocationRepo) Delete(ctx context.Context, householdID, id string) error {
	return r.db.WithContext(ctx).GetDB().
		Where("household_id = ? AND id = ?", householdID, id).
		Delete(&LocationPO{}).Error
}

func (r *LocationRepo) CountChildren(ctx context.Context, householdID, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).GetDB().
		Model(&LocationPO{}).
		Where("household_id = ? AND parent_id = ?", householdID, id).
		Count(&n).Error
	return n, err
}

func (r *LocationRepo) CountItems(ctx context.Context, householdID, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).GetDB().
		Model(&ItemPO{}).
		Where("household_id = ? AND location_id = ?", householdID, id).
		Count(&n).Error
	return n, err
}

func toLocationPO(loc *types.Location) *LocationPO {
	po := &LocationPO{
		ID:          loc.ID,
		HouseholdID: loc.HouseholdID,
		Name:        loc.Name,
		CreatedAt:   loc.CreatedAt,
		UpdatedAt:   loc.UpdatedAt,
	}
	if loc.ParentID != "" {
		po.ParentID = &loc.ParentID
	}
	return po
}

func toLocation(po *LocationPO) *types.Location {
	loc := &types.Location{
		ID:          po.ID,
		HouseholdID: po.HouseholdID,
		Name:        po.Name,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
	if po.ParentID != nil {
		loc.ParentID = *po.ParentID
	}
	return loc
}

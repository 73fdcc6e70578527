package data

import (
	"context"

	"github.com/nestkeep/nestkeep-backend/internal/admin/biz"
	authdata "github.com/nestkeep/nestkeep-backend/internal/auth/data"
	householddata "github.com/nestkeep/nestkeep-backend/internal/household/data"
	inventorydata "github.com/nestkeep/nestkeep-backend/internal/inventory/data"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
)

// StatsRepo reads aggregate counts over the primary tables.
type StatsRepo struct {
	db     *database.DB
	logger *logger.Logger
}

// NewStatsRepo creates the stats repository
func NewStatsRepo(db *database.DB, log *logger.Logger) biz.StatsRepo {
	return &StatsRepo{db: db, logger: log}
}

// Counts returns live row counts. Soft-deleted rows are excluded by the
// default GORM scope on models carrying DeletedAt.
func (r *StatsRepo) Counts(ctx context.Context) (*biz.EntityCounts, error) {
	gdb := r.db.WithContext(ctx).GetDB()

	counts := &biz.EntityCounts{}
	if err := gdb.Model(&authdata.UserPO{}).Count(&counts.Users).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&householddata.HouseholdPO{}).Count(&counts.Households).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&inventorydata.ItemPO{}).Count(&counts.Items).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&inventorydata.LocationPO{}).Count(&counts.Locations).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

package data

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/export/biz"
	invtypes "github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
)

// ItemSource reads a household's full inventory for export.
type ItemSource struct {
	db *database.DB
}

// NewItemSource creates the export item source
func NewItemSource(db *database.DB) biz.ItemSource {
	return &ItemSource{db: db}
}

type exportRow struct {
	ID           string     `gorm:"column:id"`
	Name         string     `gorm:"column:name"`
	Description  string     `gorm:"column:description"`
	Quantity     int        `gorm:"column:quantity"`
	Value        float64    `gorm:"column:value"`
	Status       string     `gorm:"column:status"`
	TagsRaw      []byte     `gorm:"column:tags"`
	LocationName *string    `gorm:"column:location_name"`
	PurchaseDate *time.Time `gorm:"column:purchase_date"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (s *ItemSource) ListForExport(ctx context.Context, householdID string) ([]*biz.ExportItem, error) {
	var rows []exportRow
	err := s.db.WithContext(ctx).GetDB().
		Table("items").
		Select(`items.id, items.name, COALESCE(items.description, '') AS description,
items.quantity, items.value, items.status, items.tags,
locations.name AS location_name, items.purchase_date,
items.created_at, items.updated_at`).
		Joins("LEFT JOIN locations ON locations.id = items.location_id").
		Where("items.household_id = ?", householdID).
		Where("items.deleted_at IS NULL").
		Order("items.name").
		Order("items.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*biz.ExportItem, 0, len(rows))
	for _, row := range rows {
		item := invtypes.Item{
			ID:           row.ID,
			HouseholdID:  householdID,
			Name:         row.Name,
			Description:  row.Description,
			Quantity:     row.Quantity,
			Value:        row.Value,
			Status:       row.Status,
			PurchaseDate: row.PurchaseDate,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}
		if len(row.TagsRaw) > 0 {
			_ = json.Unmarshal(row.TagsRaw, &item.Tags)
		}
		exp := &biz.ExportItem{Item: item}
		if row.LocationName != nil {
			exp.LocationName = *row.LocationName
		}
		out = append(out, exp)
	}
	return out, nil
}

package data

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"gorm.io/gorm"
)

// itemColumns is the shared projection every strategy returns, so the
// engine sees one row shape no matter which strategy produced it.
const itemColumns = `items.id,
items.name,
COALESCE(items.description, '') AS description,
items.quantity,
items.value,
items.status,
items.tags,
items.location_id,
locations.name AS location_name,
COALESCE(items.photo_key, '') AS photo_key,
items.purchase_date,
items.created_at,
items.updated_at`

// itemRow is the scan target for strategy queries.
type itemRow struct {
	ID           string     `gorm:"column:id"`
	Name         string     `gorm:"column:name"`
	Description  string     `gorm:"column:description"`
	Quantity     int        `gorm:"column:quantity"`
	Value        float64    `gorm:"column:value"`
	Status       string     `gorm:"column:status"`
	TagsRaw      []byte     `gorm:"column:tags"`
	LocationID   *string    `gorm:"column:location_id"`
	LocationName *string    `gorm:"column:location_name"`
	PhotoKey     string     `gorm:"column:photo_key"`
	PurchaseDate *time.Time `gorm:"column:purchase_date"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	Relevance    float64    `gorm:"column:relevance"`
}

// scopedItems starts every strategy query: tenant scope, soft-delete
// exclusion, location join for breadcrumb names, and the caller's
// filters. Filters apply identically under every strategy.
func scopedItems(gdb *gorm.DB, householdID string, f *types.SearchFilters) *gorm.DB {
	tx := gdb.Table("items").
		Joins("LEFT JOIN locations ON locations.id = items.location_id").
		Where("items.household_id = ?", householdID).
		Where("items.deleted_at IS NULL")
	return applyFilters(tx, f)
}

func applyFilters(tx *gorm.DB, f *types.SearchFilters) *gorm.DB {
	if f == nil {
		return tx
	}
	if f.MinValue != nil {
		tx = tx.Where("items.value >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		tx = tx.Where("items.value <= ?", *f.MaxValue)
	}
	if len(f.Statuses) > 0 {
		tx = tx.Where("items.status IN ?", f.Statuses)
	}
	if f.DateFrom != nil {
		tx = tx.Where("items.purchase_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		tx = tx.Where("items.purchase_date <= ?", *f.DateTo)
	}
	if len(f.LocationIDs) > 0 {
		tx = tx.Where("items.location_id IN ?", f.LocationIDs)
	}
	if len(f.Tags) > 0 {
		// Containment: the item must carry every requested tag.
		raw, _ := json.Marshal(f.Tags)
		tx = tx.Where("items.tags @> ?::jsonb", string(raw))
	}
	return tx
}

// applySort orders the page. The tiebreak on updated_at then id makes
// pagination deterministic even when the primary key ties.
func applySort(tx *gorm.DB, q *types.SearchQuery) *gorm.DB {
	dir := "DESC"
	if q.SortDir == types.SortAsc {
		dir = "ASC"
	}
	switch q.Sort {
	case types.SortName:
		tx = tx.Order("items.name " + dir)
	case types.SortValue:
		tx = tx.Order("items.value " + dir)
	case types.SortDate:
		tx = tx.Order("items.purchase_date " + dir + " NULLS LAST")
	default:
		tx = tx.Order("relevance " + dir)
	}
	return tx.Order("items.updated_at DESC").Order("items.id")
}

func toRankedRows(rows []itemRow) []biz.RankedRow {
	ranked := make([]biz.RankedRow, 0, len(rows))
	for _, row := range rows {
		item := types.SearchItem{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			Quantity:     row.Quantity,
			Value:        row.Value,
			Status:       row.Status,
			PhotoKey:     row.PhotoKey,
			PurchaseDate: row.PurchaseDate,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}
		if row.LocationID != nil {
			item.LocationID = *row.LocationID
		}
		if row.LocationName != nil {
			item.LocationName = *row.LocationName
		}
		if len(row.TagsRaw) > 0 {
			_ = json.Unmarshal(row.TagsRaw, &item.Tags)
		}
		ranked = append(ranked, biz.RankedRow{Item: item, Score: row.Relevance})
	}
	return ranked
}

// classify maps database failures onto the cascade contract: missing
// functions, operators, or relations mean the strategy cannot run here,
// which the engine consumes silently. Everything else passes through
// for the engine to inspect.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUndefinedObjectError(err) {
		return fmt.Errorf("%w: %v", biz.ErrStrategyUnavailable, err)
	}
	return err
}

// escapeLike neutralizes LIKE metacharacters in user text so they match
// literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

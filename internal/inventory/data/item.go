package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/inventory/biz"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// StringArrayJSON stores a string slice as a JSONB array.
type StringArrayJSON []string

func (j *StringArrayJSON) Scan(value interface{}) error {
	if value == nil {
		*j = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j StringArrayJSON) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(j)
}

// ItemPO is the items table model. SearchVector is maintained by a
// database trigger over name, description and tags; the application
// only ever reads it.
type ItemPO struct {
	ID           string          `gorm:"type:uuid;primarykey"`
	HouseholdID  string          `gorm:"type:uuid;not null;index:idx_items_household_id,where:deleted_at IS NULL"`
	Name         string          `gorm:"size:200;not null"`
	Description  string          `gorm:"type:text"`
	Quantity     int             `gorm:"not null;default:1"`
	Value        float64         `gorm:"type:numeric(12,2);not null;default:0"`
	Status       string          `gorm:"size:20;not null;default:'active';index:idx_items_status"`
	Tags         StringArrayJSON `gorm:"type:jsonb;not null;default:'[]';index:idx_items_tags,type:gin"`
	LocationID   *string         `gorm:"type:uuid;index:idx_items_location_id"`
	PhotoKey     string          `gorm:"size:512"`
	PurchaseDate *time.Time      `gorm:""`
	SearchVector string          `gorm:"type:tsvector;->"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	DeletedAt    gorm.DeletedAt  `gorm:"index:idx_items_deleted_at"`
}

func (ItemPO) TableName() string {
	return "items"
}

// ItemRepo is the GORM-backed item repository. Every query carries the
// household id so cross-tenant access is impossible at this layer.
type ItemRepo struct {
	db *database.DB
}

// NewItemRepo creates the item repository
func NewItemRepo(db *database.DB) biz.ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) Create(ctx context.Context, item *types.Item) error {
	return r.db.WithContext(ctx).GetDB().Create(toItemPO(item)).Error
}

func (r *ItemRepo) GetByID(ctx context.Context, householdID, id string) (*types.Item, error) {
	var po ItemPO
	err := r.db.WithContext(ctx).GetDB().
		Where("household_id = ? AND id = ?", householdID, id).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toItem(&po), nil
}

func (r *ItemRepo) List(ctx context.Context, householdID string, filter *types.ItemFilter) ([]*types.Item, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).GetDB().
			Model(&ItemPO{}).
			Where("household_id = ?", householdID)
		if filter.LocationID != "" {
			tx = tx.Where("location_id = ?", filter.LocationID)
		}
		if filter.Status != "" {
			tx = tx.Where("status = ?", filter.Status)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []ItemPO
	err := base().
		Order("updated_at DESC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*types.Item, 0, len(pos))
	for i := range pos {
		items = append(items, toItem(&pos[i]))
	}
	return items, total, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *types.Item) error {
	var locationID *string
	if item.LocationID != "" {
		locationID = &item.LocationID
	}
	return r.db.WithContext(ctx).GetDB().
		Model(&ItemPO{}).
		Where("household_id = ? AND id = ?", item.HouseholdID, item.ID).
		Updates(map[string]interface{}{
			"name":          item.Name,
			"description":   item.Description,
			"quantity":      item.Quantity,
			"value":         item.Value,
			"status":        item.Status,
			"tags":          StringArrayJSON(item.Tags),
			"location_id":   locationID,
			"purchase_date": item.PurchaseDate,
			"updated_at":    item.UpdatedAt,
		}).Error
}

func (r *ItemRepo) Delete(ctx context.Context, householdID, id string) error {
	return r.db.WithContext(ctx).GetDB().
		Where("household_id = ? AND id = ?", householdID, id).
		Delete(&ItemPO{}).Error
}

func (r *ItemRepo) SetPhotoKey(ctx context.Context, householdID, id, photoKey string) error {
	return r.db.WithContext(ctx).GetDB().
		Model(&ItemPO{}).
		Where("household_id = ? AND id = ?", householdID, id).
		Updates(map[string]interface{}{
			"photo_key":  photoKey,
			"updated_at": time.Now().UTC(),
		}).Error
}

func toItemPO(item *types.Item) *ItemPO {
	po := &ItemPO{
		ID:           item.ID,
		HouseholdID:  item.HouseholdID,
		Name:         item.Name,
		Description:  item.Description,
		Quantity:     item.Quantity,
		Value:        item.Value,
		Status:       item.Status,
		Tags:         StringArrayJSON(item.Tags),
		PhotoKey:     item.PhotoKey,
		PurchaseDate: item.PurchaseDate,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if item.LocationID != "" {
		po.LocationID = &item.LocationID
	}
	return po
}

func toItem(po *ItemPO) *types.Item {
	item := &types.Item{
		ID:           po.ID,
		HouseholdID:  po.HouseholdID,
		Name:         po.Name,
		Description:  po.Description,
		Quantity:     po.Quantity,
		Value:        po.Value,
		Status:       po.Status,
		Tags:         po.Tags,
		PhotoKey:     po.PhotoKey,
		PurchaseDate: po.PurchaseDate,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	if po.LocationID != nil {
		item.LocationID = *po.LocationID
	}
	return item
}

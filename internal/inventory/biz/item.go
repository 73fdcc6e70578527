package biz

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// MembershipResolver resolves a caller to their single active household.
type MembershipResolver interface {
	ResolveActiveHousehold(ctx context.Context, userID string) (string, error)
}

// ItemRepo is the persistence contract for items. Every method is
// already household scoped; a wrong-household id behaves like a missing
// record.
type ItemRepo interface {
	Create(ctx context.Context, item *types.Item) error
	GetByID(ctx context.Context, householdID, id string) (*types.Item, error)
	List(ctx context.Context, householdID string, filter *types.ItemFilter) ([]*types.Item, int64, error)
	Update(ctx context.Context, item *types.Item) error
	Delete(ctx context.Context, householdID, id string) error
	SetPhotoKey(ctx context.Context, householdID, id, photoKey string) error
}

// PhotoStore holds item photos.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

// PhotoURLExpiry bounds how long a presigned photo link stays valid.
const PhotoURLExpiry = 15 * time.Minute

var allowedPhotoTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ItemInput carries the writable item fields.
type ItemInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Quantity     int        `json:"quantity"`
	Value        float64    `json:"value"`
	Status       string     `json:"status"`
	Tags         []string   `json:"tags"`
	LocationID   string     `json:"location_id"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

// Validate normalizes and checks the input in place.
func (in *ItemInput) Validate() string {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > types.MaxNameLength {
		return "name must be 1-200 characters"
	}
	if len(in.Description) > types.MaxDescriptionLength {
		return "description is too long"
	}
	if in.Quantity < 0 {
		return "quantity cannot be negative"
	}
	if in.Value < 0 {
		return "value cannot be negative"
	}
	if in.Status == "" {
		in.Status = types.StatusActive
	}
	if !types.ValidStatus(in.Status) {
		return "invalid status"
	}
	if len(in.Tags) > types.MaxTags {
		return "too many tags"
	}
	for i, tag := range in.Tags {
		in.Tags[i] = strings.TrimSpace(tag)
		if in.Tags[i] == "" || len(in.Tags[i]) > types.MaxTagLength {
			return "tags must be 1-50 characters"
		}
	}
	return ""
}

// ItemUseCase contains business logic for inventory items.
type ItemUseCase struct {
	guard     MembershipResolver
	repo      ItemRepo
	locations LocationRepo
	photos    PhotoStore
	photoKey  func(householdID, itemID, filename string) string
	logger    *logger.Logger
}

// NewItemUseCase creates the item use case
func NewItemUseCase(
	guard MembershipResolver,
	repo ItemRepo,
	locations LocationRepo,
	photos PhotoStore,
	photoKey func(householdID, itemID, filename string) string,
	log *logger.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		guard:     guard,
		repo:      repo,
		locations: locations,
		photos:    photos,
		photoKey:  photoKey,
		logger:    log,
	}
}

// CreateItem adds an item to the caller's household.
func (uc *ItemUseCase) CreateItem(ctx context.Context, userID string, in *ItemInput) (*types.Item, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msg := in.Validate(); msg != "" {
		return nil, apperrors.New(apperrors.ErrItemInvalidInput, msg)
	}
	if err := uc.checkLocation(ctx, householdID, in.LocationID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &types.Item{
		ID:           uuid.New().String(),
		HouseholdID:  householdID,
		Name:         in.Name,
		Description:  in.Description,
		Quantity:     in.Quantity,
		Value:        in.Value,
		Status:       in.Status,
		Tags:         in.Tags,
		LocationID:   in.LocationID,
		PurchaseDate: in.PurchaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns one item from the caller's household.
func (uc *ItemUseCase) GetItem(ctx context.Context, userID, itemID string) (*types.Item, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.getScoped(ctx, householdID, itemID)
}

// ListItems pages through the caller's household items.
func (uc *ItemUseCase) ListItems(ctx context.Context, userID string, filter *types.ItemFilter) ([]*types.Item, int64, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if filter == nil {
		filter = &types.ItemFilter{}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !types.ValidStatus(filter.Status) {
		return nil, 0, apperrors.New(apperrors.ErrItemInvalidInput, "invalid status")
	}
	return uc.repo.List(ctx, householdID, filter)
}

// UpdateItem replaces the writable fields of an item.
func (uc *ItemUseCase) UpdateItem(ctx context.Context, userID, itemID string, in *ItemInput) (*types.Item, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msg := in.Validate(); msg != "" {
		return nil, apperrors.New(apperrors.ErrItemInvalidInput, msg)
	}

	item, err := uc.getScoped(ctx, householdID, itemID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkLocation(ctx, householdID, in.LocationID); err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Description = in.Description
	item.Quantity = in.Quantity
	item.Value = in.Value
	item.Status = in.Status
	item.Tags = in.Tags
	item.LocationID = in.LocationID
	item.PurchaseDate = in.PurchaseDate
	item.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem soft deletes an item. Its photo object is removed
// immediately; a failed removal only logs, the orphan is harmless.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, userID, itemID string) error {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return err
	}

	item, err := uc.getScoped(ctx, householdID, itemID)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, householdID, itemID); err != nil {
		return err
	}

	if item.PhotoKey != "" {
		if err := uc.photos.Remove(ctx, item.PhotoKey); err != nil {
			uc.logger.WithContext(ctx).Warn("photo cleanup failed",
				zap.String("item_id", itemID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// AttachPhoto stores an item photo and records its object key. An
// existing photo is replaced.
func (uc *ItemUseCase) AttachPhoto(ctx context.Context, userID, itemID, filename string, r io.Reader, size int64) (*types.Item, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedPhotoTypes[ext]
	if !ok {
		return nil, apperrors.New(apperrors.ErrItemInvalidInput, "photo must be jpg, png, webp or gif")
	}
	if size <= 0 || size > types.MaxPhotoSize {
		return nil, apperrors.New(apperrors.ErrItemInvalidInput, "photo must be at most 10MB")
	}

	item, err := uc.getScoped(ctx, householdID, itemID)
	if err != nil {
		return nil, err
	}

	// The repo may hand back a live pointer; SetPhotoKey can overwrite
	// item.PhotoKey through it, so capture the old key first.
	oldKey := item.PhotoKey

	key := uc.photoKey(householdID, itemID, filename)
	if err := uc.photos.Put(ctx, key, r, size, contentType); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPhotoUploadFailed)
	}
	if err := uc.repo.SetPhotoKey(ctx, householdID, itemID, key); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := uc.photos.Remove(ctx, oldKey); err != nil {
			uc.logger.WithContext(ctx).Warn("stale photo cleanup failed",
				zap.String("item_id", itemID),
				zap.Error(err),
			)
		}
	}

	item.PhotoKey = key
	return item, nil
}

// PhotoURL returns a short-lived download link for the item's photo.
func (uc *ItemUseCase) PhotoURL(ctx context.Context, userID, itemID string) (string, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return "", err
	}

	item, err := uc.getScoped(ctx, householdID, itemID)
	if err != nil {
		return "", err
	}
	if item.PhotoKey == "" {
		return "", apperrors.New(apperrors.ErrNotFound, "item has no photo")
	}
	return uc.photos.PresignedGetURL(ctx, item.PhotoKey, PhotoURLExpiry)
}

func (uc *ItemUseCase) getScoped(ctx context.Context, householdID, itemID string) (*types.Item, error) {
	item, err := uc.repo.GetByID(ctx, householdID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.New(apperrors.ErrItemNotFound)
	}
	return item, nil
}

func (uc *ItemUseCase) checkLocation(ctx context.Context, householdID, locationID string) error {
	if locationID == "" {
		return nil
	}
	loc, err := uc.locations.GetByID(ctx, householdID, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return apperrors.New(apperrors.ErrLocationNotFound)
	}
	return nil
}

package biz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuard struct {
	households map[string]string // user id -> household id
}

func (f fakeGuard) ResolveActiveHousehold(_ context.Context, userID string) (string, error) {
	if h, ok := f.households[userID]; ok {
		return h, nil
	}
	return "", apperrors.New(apperrors.ErrHouseholdNoMembership)
}

type fakeItemRepo struct {
	items map[string]*types.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string]*types.Item{}}
}

func (f *fakeItemRepo) Create(_ context.Context, item *types.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, householdID, id string) (*types.Item, error) {
	item, ok := f.items[id]
	if !ok || item.HouseholdID != householdID {
		return nil, nil
	}
	return item, nil
}

func (f *fakeItemRepo) List(_ context.Context, householdID string, filter *types.ItemFilter) ([]*types.Item, int64, error) {
	var out []*types.Item
	for _, item := range f.items {
		if item.HouseholdID != householdID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.LocationID != "" && item.LocationID != filter.LocationID {
			continue
		}
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *types.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, householdID, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeItemRepo) SetPhotoKey(_ context.Context, householdID, id, photoKey string) error {
	f.items[id].PhotoKey = photoKey
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*types.Location
	children  map[string]int64
	itemCount map[string]int64
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{
		locations: map[string]*types.Location{},
		children:  map[string]int64{},
		itemCount: map[string]int64{},
	}
}

func (f *fakeLocationRepo) Create(_ context.Context, loc *types.Location) error {
	f.locations[loc.ID] = loc
	if loc.ParentID != "" {
		f.children[loc.ParentID]++
	}
	return nil
}

func (f *fakeLocationRepo) GetByID(_ context.Context, householdID, id string) (*types.Location, error) {
	loc, ok := f.locations[id]
	if !ok || loc.HouseholdID != householdID {
		return nil, nil
	}
	return loc, nil
}

func (f *fakeLocationRepo) ListByHousehold(_ context.Context, householdID string) ([]*types.Location, error) {
	var out []*types.Location
	for _, loc := range f.locations {
		if loc.HouseholdID == householdID {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (f *fakeLocationRepo) Update(_ context.Context, loc *types.Location) error {
	f.locations[loc.ID] = loc
	return nil
}

func (f *fakeLocationRepo) Delete(_ context.Context, householdID, id string) error {
	delete(f.locations, id)
	return nil
}

func (f *fakeLocationRepo) CountChildren(_ context.Context, householdID, id string) (int64, error) {
	return f.children[id], nil
}

func (f *fakeLocationRepo) CountItems(_ context.Context, householdID, id string) (int64, error) {
	return f.itemCount[id], nil
}

type fakePhotoStore struct {
	objects map[string][]byte
	removed []string
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: map[string][]byte{}}
}

func (f *fakePhotoStore) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakePhotoStore) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("no such object: %s", key)
	}
	return "https://example.com/" + key, nil
}

func (f *fakePhotoStore) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func testPhotoKey(householdID, itemID, filename string) string {
	return "photos/" + householdID + "/" + itemID + "/" + filename
}

func newItemFixture(t *testing.T) (*ItemUseCase, *fakeItemRepo, *fakeLocationRepo, *fakePhotoStore) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	guard := fakeGuard{households: map[string]string{
		"alice": "house-a",
		"bob":   "house-b",
	}}
	items := newFakeItemRepo()
	locs := newFakeLocationRepo()
	photos := newFakePhotoStore()
	return NewItemUseCase(guard, items, locs, photos, testPhotoKey, log), items, locs, photos
}

func TestCreateItemValidation(t *testing.T) {
	uc, _, _, _ := newItemFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ItemInput
	}{
		{"empty name", ItemInput{Name: "   "}},
		{"name too long", ItemInput{Name: string(bytes.Repeat([]byte("x"), 201))}},
		{"negative quantity", ItemInput{Name: "Drill", Quantity: -1}},
		{"negative value", ItemInput{Name: "Drill", Value: -5}},
		{"bad status", ItemInput{Name: "Drill", Status: "vaporized"}},
		{"empty tag", ItemInput{Name: "Drill", Tags: []string{" "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateItem(ctx, "alice", &tt.input)
			assert.True(t, apperrors.Is(err, apperrors.ErrItemInvalidInput))
		})
	}
}

func TestCreateItemDefaultsStatus(t *testing.T) {
	uc, _, _, _ := newItemFixture(t)

	item, err := uc.CreateItem(context.Background(), "alice", &ItemInput{Name: "Drill", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, item.Status)
	assert.Equal(t, "house-a", item.HouseholdID)
}

func TestCreateItemRejectsForeignLocation(t *testing.T) {
	uc, _, locs, _ := newItemFixture(t)
	ctx := context.Background()

	locs.locations["loc-b"] = &types.Location{ID: "loc-b", HouseholdID: "house-b", Name: "Bob's garage"}

	_, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill", LocationID: "loc-b"})
	assert.True(t, apperrors.Is(err, apperrors.ErrLocationNotFound))
}

func TestGetItemIsHouseholdScoped(t *testing.T) {
	uc, _, _, _ := newItemFixture(t)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill"})
	require.NoError(t, err)

	got, err := uc.GetItem(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = uc.GetItem(ctx, "bob", item.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrItemNotFound),
		"another household's item must look like it does not exist")
}

func TestDeleteItemRemovesPhoto(t *testing.T) {
	uc, _, _, photos := newItemFixture(t)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill"})
	require.NoError(t, err)
	_, err = uc.AttachPhoto(ctx, "alice", item.ID, "drill.jpg", bytes.NewReader([]byte("img")), 3)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteItem(ctx, "alice", item.ID))
	assert.Contains(t, photos.removed, testPhotoKey("house-a", item.ID, "drill.jpg"))
}

func TestAttachPhotoValidation(t *testing.T) {
	uc, _, _, _ := newItemFixture(t)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill"})
	require.NoError(t, err)

	_, err = uc.AttachPhoto(ctx, "alice", item.ID, "malware.exe", bytes.NewReader([]byte("x")), 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrItemInvalidInput))

	_, err = uc.AttachPhoto(ctx, "alice", item.ID, "big.jpg", bytes.NewReader(nil), types.MaxPhotoSize+1)
	assert.True(t, apperrors.Is(err, apperrors.ErrItemInvalidInput))

	for _, name := range []string{"a.jpg", "b.jpeg", "c.png", "d.webp", "e.gif"} {
		_, err = uc.AttachPhoto(ctx, "alice", item.ID, name, bytes.NewReader([]byte("x")), 1)
		assert.NoError(t, err, name)
	}
}

func TestAttachPhotoReplacesOldObject(t *testing.T) {
	uc, _, _, photos := newItemFixture(t)
	ctx := context.Background()

	item, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill"})
	require.NoError(t, err)

	_, err = uc.AttachPhoto(ctx, "alice", item.ID, "old.jpg", bytes.NewReader([]byte("a")), 1)
	require.NoError(t, err)
	updated, err := uc.AttachPhoto(ctx, "alice", item.ID, "new.png", bytes.NewReader([]byte("b")), 1)
	require.NoError(t, err)

	assert.Equal(t, testPhotoKey("house-a", item.ID, "new.png"), updated.PhotoKey)
	assert.Contains(t, photos.removed, testPhotoKey("house-a", item.ID, "old.jpg"))

	url, err := uc.PhotoURL(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "new.png")
}

func TestListItemsFilters(t *testing.T) {
	uc, _, _, _ := newItemFixture(t)
	ctx := context.Background()

	_, err := uc.CreateItem(ctx, "alice", &ItemInput{Name: "Drill", Status: types.StatusActive})
	require.NoError(t, err)
	_, err = uc.CreateItem(ctx, "alice", &ItemInput{Name: "Ladder", Status: types.StatusLent})
	require.NoError(t, err)
	_, err = uc.CreateItem(ctx, "bob", &ItemInput{Name: "Drill"})
	require.NoError(t, err)

	items, total, err := uc.ListItems(ctx, "alice", &types.ItemFilter{Status: types.StatusLent})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Ladder", items[0].Name)
}

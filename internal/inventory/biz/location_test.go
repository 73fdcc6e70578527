package biz

import (
	"context"
	"testing"

	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocationFixture() (*LocationUseCase, *fakeLocationRepo) {
	guard := fakeGuard{households: map[string]string{
		"alice": "house-a",
		"bob":   "house-b",
	}}
	repo := newFakeLocationRepo()
	return NewLocationUseCase(guard, repo), repo
}

func TestCreateLocationTree(t *testing.T) {
	uc, _ := newLocationFixture()
	ctx := context.Background()

	garage, err := uc.CreateLocation(ctx, "alice", "Garage", "")
	require.NoError(t, err)
	shelf, err := uc.CreateLocation(ctx, "alice", "Shelf B", garage.ID)
	require.NoError(t, err)
	box, err := uc.CreateLocation(ctx, "alice", "Blue Box", shelf.ID)
	require.NoError(t, err)

	path, err := uc.PathOf(ctx, "alice", box.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garage > Shelf B > Blue Box", path)
}

func TestCreateLocationDepthLimit(t *testing.T) {
	uc, _ := newLocationFixture()
	ctx := context.Background()

	parent := ""
	for i := 0; i < types.MaxLocationDepth; i++ {
		loc, err := uc.CreateLocation(ctx, "alice", "Level", parent)
		require.NoError(t, err)
		parent = loc.ID
	}

	_, err := uc.CreateLocation(ctx, "alice", "One too deep", parent)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))
}

func TestCreateLocationRejectsForeignParent(t *testing.T) {
	uc, _ := newLocationFixture()
	ctx := context.Background()

	bobRoot, err := uc.CreateLocation(ctx, "bob", "Bob's garage", "")
	require.NoError(t, err)

	_, err = uc.CreateLocation(ctx, "alice", "Sneaky shelf", bobRoot.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrLocationNotFound))
}

func TestUpdateLocationRejectsCycle(t *testing.T) {
	uc, _ := newLocationFixture()
	ctx := context.Background()

	garage, err := uc.CreateLocation(ctx, "alice", "Garage", "")
	require.NoError(t, err)
	shelf, err := uc.CreateLocation(ctx, "alice", "Shelf", garage.ID)
	require.NoError(t, err)

	_, err = uc.UpdateLocation(ctx, "alice", garage.ID, "Garage", garage.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))

	_, err = uc.UpdateLocation(ctx, "alice", garage.ID, "Garage", shelf.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams),
		"moving a node under its own child must be rejected")
}

func TestDeleteLocationRequiresEmpty(t *testing.T) {
	uc, repo := newLocationFixture()
	ctx := context.Background()

	garage, err := uc.CreateLocation(ctx, "alice", "Garage", "")
	require.NoError(t, err)
	_, err = uc.CreateLocation(ctx, "alice", "Shelf", garage.ID)
	require.NoError(t, err)

	err = uc.DeleteLocation(ctx, "alice", garage.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrLocationNotEmpty))

	occupied, err := uc.CreateLocation(ctx, "alice", "Bin", "")
	require.NoError(t, err)
	repo.itemCount[occupied.ID] = 2
	err = uc.DeleteLocation(ctx, "alice", occupied.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrLocationNotEmpty))
}

package data

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hammer", "hammer"},
		{"percent", "100% cotton", `100\% cotton`},
		{"underscore", "wall_mount", `wall\_mount`},
		{"backslash", `C:\tools`, `C:\\tools`},
		{"mixed", `50%_off\`, `50\%\_off\\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.input))
		})
	}
}

func TestToRankedRows(t *testing.T) {
	now := time.Now().UTC()
	loc := "loc-1"
	locName := "Garage"
	rows := []itemRow{
		{
			ID:           "item-1",
			Name:         "Cordless Drill",
			Description:  "18V with two batteries",
			Quantity:     1,
			Value:        129.99,
			Status:       "active",
			TagsRaw:      []byte(`["tools","power"]`),
			LocationID:   &loc,
			LocationName: &locName,
			PhotoKey:     "photos/h/i/drill.jpg",
			CreatedAt:    now,
			UpdatedAt:    now,
			Relevance:    0.82,
		},
		{
			ID:        "item-2",
			Name:      "Drill Bits",
			CreatedAt: now,
			UpdatedAt: now,
			Relevance: 0.4,
		},
	}

	ranked := toRankedRows(rows)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Cordless Drill", ranked[0].Item.Name)
	assert.Equal(t, []string{"tools", "power"}, ranked[0].Item.Tags)
	assert.Equal(t, "loc-1", ranked[0].Item.LocationID)
	assert.Equal(t, "Garage", ranked[0].Item.LocationName)
	assert.Equal(t, 0.82, ranked[0].Score)

	assert.Empty(t, ranked[1].Item.Tags)
	assert.Empty(t, ranked[1].Item.LocationID)
	assert.Empty(t, ranked[1].Item.LocationName)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	undefined := &pgconn.PgError{Code: "42883"}
	assert.ErrorIs(t, classify(undefined), biz.ErrStrategyUnavailable)

	missingColumn := &pgconn.PgError{Code: "42703"}
	assert.ErrorIs(t, classify(missingColumn), biz.ErrStrategyUnavailable)

	other := errors.New("deadlock detected")
	assert.Equal(t, other, classify(other))
}

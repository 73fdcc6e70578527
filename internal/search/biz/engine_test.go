package biz

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	capability Capability
	calls      int
}

func (p *fakeProber) Probe(ctx context.Context) Capability {
	p.calls++
	return p.capability
}

type fakeStrategy struct {
	method    types.SearchMethod
	available bool
	rows      []RankedRow
	total     int64
	err       error
	calls     int
	seenHH    string
}

func (s *fakeStrategy) Method() types.SearchMethod { return s.method }

func (s *fakeStrategy) Available(cap Capability) bool { return s.available }

func (s *fakeStrategy) Search(ctx context.Context, householdID string, q *types.SearchQuery) ([]RankedRow, int64, error) {
	s.calls++
	s.seenHH = householdID
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.rows, s.total, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)
	return log
}

func row(id, name string, score float64) RankedRow {
	return RankedRow{
		Item: types.SearchItem{
			ID:        id,
			Name:      name,
			UpdatedAt: time.Now(),
		},
		Score: score,
	}
}

func query(text string) *types.SearchQuery {
	q := &types.SearchQuery{Text: text}
	q.Normalize()
	return q
}

func newTestEngine(t *testing.T, cap Capability, strategies ...Strategy) *Engine {
	t.Helper()
	return NewEngine(&fakeProber{capability: cap}, strategies, time.Second, testLogger(t))
}

func TestCascadeMatrix(t *testing.T) {
	boom := errors.New("strategy blew up")

	tests := []struct {
		name         string
		fullTextErr  error
		fullTextOff  bool
		trigramErr   error
		trigramOff   bool
		wantMethod   types.SearchMethod
		wantFTCalls  int
		wantTriCalls int
	}{
		{
			name:       "all healthy prefers full text",
			wantMethod: types.MethodFullText, wantFTCalls: 1, wantTriCalls: 0,
		},
		{
			name:        "full text throws falls to trigram",
			fullTextErr: boom,
			wantMethod:  types.MethodTrigram, wantFTCalls: 1, wantTriCalls: 1,
		},
		{
			name:        "full text unavailable falls to trigram",
			fullTextOff: true,
			wantMethod:  types.MethodTrigram, wantFTCalls: 0, wantTriCalls: 1,
		},
		{
			name:        "both throw falls to ilike",
			fullTextErr: boom, trigramErr: boom,
			wantMethod: types.MethodILike, wantFTCalls: 1, wantTriCalls: 1,
		},
		{
			name:        "both unavailable falls to ilike",
			fullTextOff: true, trigramOff: true,
			wantMethod: types.MethodILike, wantFTCalls: 0, wantTriCalls: 0,
		},
		{
			name:        "unavailable sentinel cascades like an error",
			fullTextErr: ErrStrategyUnavailable, trigramErr: fmt.Errorf("wrapped: %w", ErrStrategyUnavailable),
			wantMethod: types.MethodILike, wantFTCalls: 1, wantTriCalls: 1,
		},
		{
			name:        "timeout cascades like an error",
			fullTextErr: context.DeadlineExceeded,
			wantMethod:  types.MethodTrigram, wantFTCalls: 1, wantTriCalls: 1,
		},
		{
			name:        "repeated timeouts still reach the fallback",
			fullTextErr: fmt.Errorf("exec: %w", context.DeadlineExceeded), trigramErr: context.DeadlineExceeded,
			wantMethod: types.MethodILike, wantFTCalls: 1, wantTriCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeStrategy{
				method: types.MethodFullText, available: !tt.fullTextOff,
				rows: []RankedRow{row("a", "drill", 0.9)}, total: 1, err: tt.fullTextErr,
			}
			tri := &fakeStrategy{
				method: types.MethodTrigram, available: !tt.trigramOff,
				rows: []RankedRow{row("a", "drill", 0.6)}, total: 1, err: tt.trigramErr,
			}
			fb := &fakeStrategy{
				method: types.MethodILike, available: true,
				rows: []RankedRow{row("a", "drill", 1.0)}, total: 1,
			}

			engine := newTestEngine(t, Capability{}, ft, tri, fb)
			res, err := engine.Search(context.Background(), "hh-1", query("drill"))

			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, res.SearchMethod)
			assert.Equal(t, tt.wantFTCalls, ft.calls)
			assert.Equal(t, tt.wantTriCalls, tri.calls)
			assert.Len(t, res.Items, 1)
		})
	}
}

func TestFuzzyOptOutSkipsTrigram(t *testing.T) {
	boom := errors.New("strategy blew up")
	ft := &fakeStrategy{method: types.MethodFullText, available: true, err: boom}
	tri := &fakeStrategy{method: types.MethodTrigram, available: true, rows: []RankedRow{row("a", "drill", 0.6)}, total: 1}
	fb := &fakeStrategy{method: types.MethodILike, available: true, rows: []RankedRow{row("a", "drill", 1.0)}, total: 1}

	engine := newTestEngine(t, Capability{}, ft, tri, fb)

	q := query("drill")
	off := false
	q.Fuzzy = &off
	res, err := engine.Search(context.Background(), "hh-1", q)
	require.NoError(t, err)
	assert.Equal(t, types.MethodILike, res.SearchMethod)
	assert.Zero(t, tri.calls, "trigram must not run when fuzzy matching is declined")

	on := true
	q2 := query("drill")
	q2.Fuzzy = &on
	res, err = engine.Search(context.Background(), "hh-1", q2)
	require.NoError(t, err)
	assert.Equal(t, types.MethodTrigram, res.SearchMethod)
}

func TestZeroResultIsNotFailure(t *testing.T) {
	ft := &fakeStrategy{method: types.MethodFullText, available: true, rows: nil, total: 0}
	fb := &fakeStrategy{method: types.MethodILike, available: true, rows: []RankedRow{row("x", "drill", 1)}, total: 1}

	engine := newTestEngine(t, Capability{}, ft, fb)
	res, err := engine.Search(context.Background(), "hh-1", query("drill"))

	require.NoError(t, err)
	assert.Equal(t, types.MethodFullText, res.SearchMethod)
	assert.Empty(t, res.Items)
	assert.EqualValues(t, 0, res.TotalCount)
	assert.False(t, res.HasMore)
	assert.Zero(t, fb.calls, "fallback must not run after a legitimate zero result")
}

func TestConnectivityErrorAbortsCascade(t *testing.T) {
	ft := &fakeStrategy{method: types.MethodFullText, available: true, err: fmt.Errorf("exec: %w", driver.ErrBadConn)}
	fb := &fakeStrategy{method: types.MethodILike, available: true, rows: []RankedRow{row("x", "drill", 1)}, total: 1}

	engine := newTestEngine(t, Capability{}, ft, fb)
	res, err := engine.Search(context.Background(), "hh-1", query("drill"))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperrors.ErrInternalServer, apperrors.ExtractCode(err))
	assert.Zero(t, fb.calls, "connectivity failures must not cascade")
}

func TestAllStrategiesFailSurfacesSearchError(t *testing.T) {
	boom := errors.New("bad")
	ft := &fakeStrategy{method: types.MethodFullText, available: true, err: boom}
	fb := &fakeStrategy{method: types.MethodILike, available: true, err: boom}

	engine := newTestEngine(t, Capability{}, ft, fb)
	_, err := engine.Search(context.Background(), "hh-1", query("drill"))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSearchFailed, apperrors.ExtractCode(err))
}

func TestCapabilityProbedOnce(t *testing.T) {
	prober := &fakeProber{capability: Capability{FullText: true, Trigram: true}}
	fb := &fakeStrategy{method: types.MethodILike, available: true, total: 0}
	engine := NewEngine(prober, []Strategy{fb}, time.Second, testLogger(t))

	for i := 0; i < 5; i++ {
		_, err := engine.Search(context.Background(), "hh-1", query("drill"))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, prober.calls)

	// A new engine instance forces a fresh probe.
	engine2 := NewEngine(prober, []Strategy{fb}, time.Second, testLogger(t))
	engine2.Capability(context.Background())
	assert.Equal(t, 2, prober.calls)
}

func TestNormalizeClampsScoresAndComputesStats(t *testing.T) {
	ft := &fakeStrategy{
		method: types.MethodFullText, available: true,
		rows: []RankedRow{
			{Item: types.SearchItem{ID: "1", Name: "Drill", LocationName: "Garage"}, Score: 3.7},
			{Item: types.SearchItem{ID: "2", Name: "Drill bits", LocationName: "Drill cabinet"}, Score: -0.2},
		},
		total: 2,
	}

	engine := newTestEngine(t, Capability{}, ft)
	res, err := engine.Search(context.Background(), "hh-1", query("drill"))

	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Items[0].RelevanceScore)
	assert.Equal(t, 0.0, res.Items[1].RelevanceScore)
	require.NotNil(t, res.SearchStats)
	assert.Equal(t, 1, res.SearchStats.ExactMatches)
	assert.Equal(t, 1, res.SearchStats.PartialMatches)
	assert.Equal(t, 1, res.SearchStats.LocationMatches)
}

func TestHasMoreComputation(t *testing.T) {
	rows := []RankedRow{row("1", "drill a", 0.9), row("2", "drill b", 0.8)}
	ft := &fakeStrategy{method: types.MethodFullText, available: true, rows: rows, total: 10}

	engine := newTestEngine(t, Capability{}, ft)

	q := query("drill")
	q.Limit = 2
	q.Offset = 0
	res, err := engine.Search(context.Background(), "hh-1", q)
	require.NoError(t, err)
	assert.True(t, res.HasMore)

	q2 := query("drill")
	q2.Limit = 2
	q2.Offset = 8
	res2, err := engine.Search(context.Background(), "hh-1", q2)
	require.NoError(t, err)
	assert.False(t, res2.HasMore)
}

func TestHouseholdScopePassedToStrategy(t *testing.T) {
	ft := &fakeStrategy{method: types.MethodFullText, available: true, total: 0}
	engine := newTestEngine(t, Capability{}, ft)

	_, err := engine.Search(context.Background(), "hh-42", query("drill"))
	require.NoError(t, err)
	assert.Equal(t, "hh-42", ft.seenHH)
}

func TestResponseTimeCoversStrategyOnly(t *testing.T) {
	ft := &fakeStrategy{method: types.MethodFullText, available: true, total: 0}
	engine := newTestEngine(t, Capability{}, ft)

	res, err := engine.Search(context.Background(), "hh-1", query("drill"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ResponseTime, int64(0))
	assert.Less(t, res.ResponseTime, int64(1000))
}

package biz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"go.uber.org/zap"
)

// ErrStrategyUnavailable signals that a strategy cannot run at all
// (missing extension function, unpopulated search vector). It is consumed
// entirely by the cascade and never reaches a caller.
var ErrStrategyUnavailable = errors.New("search strategy unavailable")

// RankedRow is a strategy's native output: the record plus its
// method-native score, before normalization.
type RankedRow struct {
	Item  types.SearchItem
	Score float64
}

// Strategy is one way to execute a search. Search returns the ranked,
// already-paginated page plus the pre-pagination total.
type Strategy interface {
	Method() types.SearchMethod
	Available(cap Capability) bool
	Search(ctx context.Context, householdID string, q *types.SearchQuery) ([]RankedRow, int64, error)
}

// DefaultStrategyTimeout bounds one strategy attempt.
const DefaultStrategyTimeout = 3 * time.Second

// Engine picks the best available strategy, cascades on failure and
// normalizes whatever ran into one result shape. The capability cache is
// the only state shared across requests: written once on first use, read
// thereafter. A fresh Engine re-probes.
type Engine struct {
	prober     CapabilityProber
	strategies []Strategy
	timeout    time.Duration
	logger     *logger.Logger

	probeOnce  sync.Once
	capability Capability
}

// NewEngine creates a search engine. Strategies are attempted in the
// given order; the last one should be the always-available fallback.
func NewEngine(prober CapabilityProber, strategies []Strategy, timeout time.Duration, log *logger.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultStrategyTimeout
	}
	return &Engine{
		prober:     prober,
		strategies: strategies,
		timeout:    timeout,
		logger:     log,
	}
}

// Capability returns the probed feature set, probing on first call only.
func (e *Engine) Capability(ctx context.Context) Capability {
	e.probeOnce.Do(func() {
		e.capability = e.prober.Probe(ctx)
		e.logger.Info("search capability probed",
			zap.Bool("full_text", e.capability.FullText),
			zap.Bool("trigram", e.capability.Trigram),
			zap.Bool("unaccent", e.capability.Unaccent),
			zap.Bool("uuid_gen", e.capability.UUIDGen),
		)
	})
	return e.capability
}

// Search runs the cascade for one household. The query must already be
// normalized and validated; tenant resolution happens upstream and its
// cost is excluded from the reported response time.
func (e *Engine) Search(ctx context.Context, householdID string, q *types.SearchQuery) (*types.SearchResult, error) {
	capability := e.Capability(ctx)

	var lastErr error
	for _, strategy := range e.strategies {
		if !strategy.Available(capability) {
			continue
		}
		// fuzzy=false removes approximate matching from the cascade.
		if strategy.Method() == types.MethodTrigram && q.Fuzzy != nil && !*q.Fuzzy {
			continue
		}

		start := time.Now()
		rows, total, err := e.attempt(ctx, strategy, householdID, q)
		elapsed := time.Since(start)

		if err == nil {
			// Zero rows from a strategy that ran is a success, not a
			// reason to cascade.
			return e.normalize(strategy.Method(), q, rows, total, elapsed), nil
		}

		if database.IsConnectivityError(err) && !database.IsTimeoutError(err) {
			// No strategy can succeed without the store.
			e.logger.WithContext(ctx).Error("search store unreachable", zap.Error(err))
			return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
		}

		e.logger.WithContext(ctx).Warn("search strategy failed, cascading",
			zap.String("method", string(strategy.Method())),
			zap.Bool("unavailable", errors.Is(err, ErrStrategyUnavailable)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no search strategy available")
	}
	return nil, apperrors.Wrap(lastErr, apperrors.ErrSearchFailed)
}

// attempt bounds one strategy run by the engine timeout. A timeout is
// treated identically to a thrown error for cascade purposes.
func (e *Engine) attempt(ctx context.Context, s Strategy, householdID string, q *types.SearchQuery) ([]RankedRow, int64, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return s.Search(attemptCtx, householdID, q)
}

// normalize maps a strategy's native rows into the unified result shape.
func (e *Engine) normalize(method types.SearchMethod, q *types.SearchQuery, rows []RankedRow, total int64, elapsed time.Duration) *types.SearchResult {
	items := make([]types.SearchItem, len(rows))
	stats := &types.SearchStats{}
	needle := strings.ToLower(q.Text)

	for i, row := range rows {
		item := row.Item
		item.RelevanceScore = clampScore(row.Score)
		items[i] = item

		switch {
		case strings.ToLower(item.Name) == needle:
			stats.ExactMatches++
		default:
			stats.PartialMatches++
		}
		if item.LocationName != "" && strings.Contains(strings.ToLower(item.LocationName), needle) {
			stats.LocationMatches++
		}
	}

	return &types.SearchResult{
		Items:        items,
		TotalCount:   total,
		ResponseTime: elapsed.Milliseconds(),
		SearchMethod: method,
		HasMore:      int64(q.Offset+len(items)) < total,
		SearchStats:  stats,
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

package biz

import (
	"context"

	searchbiz "github.com/nestkeep/nestkeep-backend/internal/search/biz"

	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/workerpool"
)

// EntityCounts holds row counts across the main tables.
type EntityCounts struct {
	Users      int64 `json:"users"`
	Households int64 `json:"households"`
	Items      int64 `json:"items"`
	Locations  int64 `json:"locations"`
}

// StatsRepo reads aggregate counts from the database.
type StatsRepo interface {
	Counts(ctx context.Context) (*EntityCounts, error)
}

// OwnerChecker reports whether the user owns their active household.
// Satisfied by HouseholdUseCase.
type OwnerChecker interface {
	IsOwner(ctx context.Context, userID string) (bool, error)
}

// DBInspector exposes connection pool statistics.
type DBInspector interface {
	Stats() map[string]interface{}
}

// Stats is the full diagnostics payload.
type Stats struct {
	Entities   *EntityCounts          `json:"entities"`
	Search     searchbiz.Capability   `json:"search"`
	Database   map[string]interface{} `json:"database"`
	WorkerPool workerpool.Statistics  `json:"worker_pool"`
}

// StatsUseCase assembles operational diagnostics for household owners.
type StatsUseCase struct {
	checker OwnerChecker
	repo    StatsRepo
	db      DBInspector
	pool    *workerpool.Pool
	engine  *searchbiz.Engine
	logger  *logger.Logger
}

// NewStatsUseCase creates the stats use case
func NewStatsUseCase(checker OwnerChecker, repo StatsRepo, db DBInspector, pool *workerpool.Pool, engine *searchbiz.Engine, log *logger.Logger) *StatsUseCase {
	return &StatsUseCase{
		checker: checker,
		repo:    repo,
		db:      db,
		pool:    pool,
		engine:  engine,
		logger:  log,
	}
}

// GetStats returns diagnostics. Only household owners may read them.
func (uc *StatsUseCase) GetStats(ctx context.Context, userID string) (*Stats, error) {
	owner, err := uc.checker.IsOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, apperrors.New(apperrors.ErrHouseholdNotOwner)
	}

	counts, err := uc.repo.Counts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	return &Stats{
		Entities:   counts,
		Search:     uc.engine.Capability(ctx),
		Database:   uc.db.Stats(),
		WorkerPool: uc.pool.Stats(),
	}, nil
}

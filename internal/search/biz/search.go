package biz

import (
	"context"

	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
)

// MembershipResolver resolves a caller to their single active household.
// It is the tenant-scoped access guard: no search runs without it.
type MembershipResolver interface {
	ResolveActiveHousehold(ctx context.Context, userID string) (string, error)
}

// SearchUseCase is the search entry point: guard first, then the
// strategy cascade. Per-request state lives on the stack; the engine's
// capability cache is the only shared state.
type SearchUseCase struct {
	guard  MembershipResolver
	engine *Engine
}

// NewSearchUseCase creates the search use case
func NewSearchUseCase(guard MembershipResolver, engine *Engine) *SearchUseCase {
	return &SearchUseCase{
		guard:  guard,
		engine: engine,
	}
}

// SearchItems validates the query, resolves the caller's household and
// executes the cascade under that household's scope.
func (uc *SearchUseCase) SearchItems(ctx context.Context, userID string, q *types.SearchQuery) (*types.SearchResult, error) {
	q.Normalize()
	if msg := q.Validate(); msg != "" {
		return nil, apperrors.New(apperrors.ErrSearchInvalidQuery, msg)
	}

	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	return uc.engine.Search(ctx, householdID, q)
}

// Capability exposes the probed feature set (admin diagnostics).
func (uc *SearchUseCase) Capability(ctx context.Context) Capability {
	return uc.engine.Capability(ctx)
}

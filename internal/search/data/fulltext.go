package data

import (
	"context"
	"fmt"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"gorm.io/gorm"
)

// fullTextStrategy ranks with ts_rank_cd over the precomputed
// search_vector column. Rank normalization flag 32 divides by rank+1,
// keeping scores inside [0,1] so the engine never has to rescale them.
type fullTextStrategy struct {
	db     *database.DB
	logger *logger.Logger
}

// NewFullTextStrategy creates the primary search strategy.
func NewFullTextStrategy(db *database.DB, log *logger.Logger) biz.Strategy {
	return &fullTextStrategy{db: db, logger: log}
}

func (s *fullTextStrategy) Method() types.SearchMethod {
	return types.MethodFullText
}

func (s *fullTextStrategy) Available(cap biz.Capability) bool {
	return cap.FullText
}

func (s *fullTextStrategy) Search(ctx context.Context, householdID string, q *types.SearchQuery) ([]biz.RankedRow, int64, error) {
	gdb := s.db.WithContext(ctx).GetDB()

	// A household whose rows all carry a NULL search_vector would make
	// every full-text query return nothing while weaker strategies still
	// match, so treat the unpopulated state as this strategy being
	// unavailable for the tenant. An empty household stays here: zero
	// matches over zero rows is a correct answer, not a degradation.
	var pop struct {
		Items   int64 `gorm:"column:items"`
		Vectors int64 `gorm:"column:vectors"`
	}
	err := gdb.Raw(
		`SELECT COUNT(*) AS items, COUNT(search_vector) AS vectors
		 FROM items WHERE household_id = ? AND deleted_at IS NULL`,
		householdID,
	).Scan(&pop).Error
	if err != nil {
		return nil, 0, classify(err)
	}
	if pop.Items > 0 && pop.Vectors == 0 {
		return nil, 0, fmt.Errorf("%w: search vectors not populated", biz.ErrStrategyUnavailable)
	}

	base := func() *gorm.DB {
		return scopedItems(gdb, householdID, q.Filters).
			Where("items.search_vector @@ plainto_tsquery('english', ?)", q.Text)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var rows []itemRow
	page := base().Select(
		itemColumns+`, ts_rank_cd(items.search_vector, plainto_tsquery('english', ?), 32) AS relevance`,
		q.Text,
	)
	page = applySort(page, q).Limit(q.Limit).Offset(q.Offset)
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, classify(err)
	}
	return toRankedRows(rows), total, nil
}

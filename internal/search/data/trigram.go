package data

import (
	"context"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"gorm.io/gorm"
)

// trigramStrategy matches via pg_trgm similarity, which tolerates typos
// the exact lexeme matching of full text cannot. similarity() already
// yields [0,1], so its output is the relevance score directly.
type trigramStrategy struct {
	db     *database.DB
	logger *logger.Logger
}

// NewTrigramStrategy creates the typo-tolerant fallback strategy.
func NewTrigramStrategy(db *database.DB, log *logger.Logger) biz.Strategy {
	return &trigramStrategy{db: db, logger: log}
}

func (s *trigramStrategy) Method() types.SearchMethod {
	return types.MethodTrigram
}

func (s *trigramStrategy) Available(cap biz.Capability) bool {
	return cap.Trigram
}

func (s *trigramStrategy) Search(ctx context.Context, householdID string, q *types.SearchQuery) ([]biz.RankedRow, int64, error) {
	gdb := s.db.WithContext(ctx).GetDB()
	threshold := q.FuzzyThreshold

	base := func() *gorm.DB {
		return scopedItems(gdb, householdID, q.Filters).
			Where(
				`(similarity(items.name, ?) >= ? OR similarity(COALESCE(items.description, ''), ?) >= ?)`,
				q.Text, threshold, q.Text, threshold,
			)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var rows []itemRow
	page := base().Select(
		itemColumns+`, GREATEST(similarity(items.name, ?), similarity(COALESCE(items.description, ''), ?)) AS relevance`,
		q.Text, q.Text,
	)
	page = applySort(page, q).Limit(q.Limit).Offset(q.Offset)
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, classify(err)
	}
	return toRankedRows(rows), total, nil
}

package data

import (
	"context"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"gorm.io/gorm"
)

// ilikeStrategy is the last resort: plain pattern matching, available on
// any Postgres without extensions. Scoring is coarse on purpose, exact
// name matches rank 1.0 and everything else 0.5.
type ilikeStrategy struct {
	db     *database.DB
	logger *logger.Logger
}

// NewILikeStrategy creates the universally available fallback strategy.
func NewILikeStrategy(db *database.DB, log *logger.Logger) biz.Strategy {
	return &ilikeStrategy{db: db, logger: log}
}

func (s *ilikeStrategy) Method() types.SearchMethod {
	return types.MethodILike
}

func (s *ilikeStrategy) Available(cap biz.Capability) bool {
	return true
}

func (s *ilikeStrategy) Search(ctx context.Context, householdID string, q *types.SearchQuery) ([]biz.RankedRow, int64, error) {
	gdb := s.db.WithContext(ctx).GetDB()
	pattern := "%" + escapeLike(q.Text) + "%"

	base := func() *gorm.DB {
		return scopedItems(gdb, householdID, q.Filters).
			Where("(items.name ILIKE ? OR items.description ILIKE ?)", pattern, pattern)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var rows []itemRow
	page := base().Select(
		itemColumns+`, CASE WHEN LOWER(items.name) = LOWER(?) THEN 1.0 ELSE 0.5 END AS relevance`,
		q.Text,
	)
	page = applySort(page, q).Limit(q.Limit).Offset(q.Offset)
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, classify(err)
	}
	return toRankedRows(rows), total, nil
}

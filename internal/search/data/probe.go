package data

import (
	"context"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"go.uber.org/zap"
)

// CapabilityProbeRepo answers which database search features are usable.
// All probes are read-only introspection; installation or repair of
// extensions is an administrative concern, never done here.
type CapabilityProbeRepo struct {
	db     *database.DB
	logger *logger.Logger
}

// NewCapabilityProbeRepo creates the capability prober
func NewCapabilityProbeRepo(db *database.DB, log *logger.Logger) biz.CapabilityProber {
	return &CapabilityProbeRepo{db: db, logger: log}
}

// Probe runs every sub-check independently. A failing check reports the
// feature as unavailable; it does not abort the remaining checks.
func (r *CapabilityProbeRepo) Probe(ctx context.Context) biz.Capability {
	return biz.Capability{
		FullText: r.fullTextUsable(ctx),
		Trigram:  r.extensionExists(ctx, "pg_trgm"),
		Unaccent: r.extensionExists(ctx, "unaccent"),
		UUIDGen:  r.extensionExists(ctx, "pgcrypto") || r.extensionExists(ctx, "uuid-ossp"),
	}
}

func (r *CapabilityProbeRepo) fullTextUsable(ctx context.Context) bool {
	var ok bool
	err := r.db.WithContext(ctx).GetDB().
		Raw(`SELECT to_tsvector('english', 'probe') @@ plainto_tsquery('english', 'probe')`).
		Scan(&ok).Error
	if err != nil {
		r.logger.WithContext(ctx).Warn("full-text probe failed", zap.Error(err))
		return false
	}
	return ok
}

func (r *CapabilityProbeRepo) extensionExists(ctx context.Context, name string) bool {
	var exists bool
	err := r.db.WithContext(ctx).GetDB().
		Raw(`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = ?)`, name).
		Scan(&exists).Error
	if err != nil {
		r.logger.WithContext(ctx).Warn("extension probe failed",
			zap.String("extension", name),
			zap.Error(err),
		)
		return false
	}
	return exists
}

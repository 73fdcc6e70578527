package data

import (
	"fmt"

	authdata "github.com/nestkeep/nestkeep-backend/internal/auth/data"
	"github.com/nestkeep/nestkeep-backend/internal/conf"
	householddata "github.com/nestkeep/nestkeep-backend/internal/household/data"
	inventorydata "github.com/nestkeep/nestkeep-backend/internal/inventory/data"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/database"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/mailer"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/objstore"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

// Data bundles the shared infrastructure clients.
type Data struct {
	DB       *database.DB
	Redis    *redis.Client
	ObjStore *objstore.Client
	Mailer   *mailer.Mailer
	Logger   *logger.Logger
}

// NewData builds every infrastructure client and returns a cleanup
// function that releases them in reverse order.
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if config.Database.AutoMigrate {
		if err := migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	objStore, err := objstore.New(&config.MinIO, log)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	m, err := mailer.New(&config.SMTP, log)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to init mailer: %w", err)
	}

	d := &Data{
		DB:       db,
		Redis:    redisClient,
		ObjStore: objStore,
		Mailer:   m,
		Logger:   log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}

	return d, cleanup, nil
}

// migrate keeps the schema in sync in development. Production schemas
// are managed outside the application, including the search_vector
// trigger and the pg_trgm and unaccent extensions.
func migrate(db *database.DB) error {
	return db.AutoMigrate(
		&authdata.UserPO{},
		&householddata.HouseholdPO{},
		&householddata.MembershipPO{},
		&householddata.InvitePO{},
		&inventorydata.LocationPO{},
		&inventorydata.ItemPO{},
	)
}

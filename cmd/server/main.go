package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminbiz "github.com/nestkeep/nestkeep-backend/internal/admin/biz"
	admindata "github.com/nestkeep/nestkeep-backend/internal/admin/data"
	adminservice "github.com/nestkeep/nestkeep-backend/internal/admin/service"
	"github.com/nestkeep/nestkeep-backend/internal/auth"
	authbiz "github.com/nestkeep/nestkeep-backend/internal/auth/biz"
	authdata "github.com/nestkeep/nestkeep-backend/internal/auth/data"
	authservice "github.com/nestkeep/nestkeep-backend/internal/auth/service"
	"github.com/nestkeep/nestkeep-backend/internal/conf"
	"github.com/nestkeep/nestkeep-backend/internal/data"
	exportbiz "github.com/nestkeep/nestkeep-backend/internal/export/biz"
	exportdata "github.com/nestkeep/nestkeep-backend/internal/export/data"
	exportservice "github.com/nestkeep/nestkeep-backend/internal/export/service"
	householdbiz "github.com/nestkeep/nestkeep-backend/internal/household/biz"
	householddata "github.com/nestkeep/nestkeep-backend/internal/household/data"
	householdservice "github.com/nestkeep/nestkeep-backend/internal/household/service"
	inventorybiz "github.com/nestkeep/nestkeep-backend/internal/inventory/biz"
	inventorydata "github.com/nestkeep/nestkeep-backend/internal/inventory/data"
	inventoryservice "github.com/nestkeep/nestkeep-backend/internal/inventory/service"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/objstore"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/workerpool"
	searchbiz "github.com/nestkeep/nestkeep-backend/internal/search/biz"
	searchdata "github.com/nestkeep/nestkeep-backend/internal/search/data"
	searchservice "github.com/nestkeep/nestkeep-backend/internal/search/service"
	"github.com/nestkeep/nestkeep-backend/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(&config.Log); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Export jobs run on a bounded pool so a burst of requests cannot
	// fork an unbounded number of CSV builders.
	pool, err := workerpool.New(&config.Export, log)
	if err != nil {
		log.Fatal("failed to initialize worker pool", zap.Error(err))
	}
	defer pool.Release()

	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret)

	// Initialize repositories
	userRepo := authdata.NewUserRepo(d.DB)
	householdRepo := householddata.NewHouseholdRepo(d.DB)
	itemRepo := inventorydata.NewItemRepo(d.DB)
	locationRepo := inventorydata.NewLocationRepo(d.DB)
	exportSource := exportdata.NewItemSource(d.DB)
	exportJobs := exportdata.NewJobStore(d.Redis)
	statsRepo := admindata.NewStatsRepo(d.DB, log)

	// Search strategies cascade in capability order. The ILIKE fallback
	// is always last and always available.
	prober := searchdata.NewCapabilityProbeRepo(d.DB, log)
	engine := searchbiz.NewEngine(prober, []searchbiz.Strategy{
		searchdata.NewFullTextStrategy(d.DB, log),
		searchdata.NewTrigramStrategy(d.DB, log),
		searchdata.NewILikeStrategy(d.DB, log),
	}, config.Search.StrategyTimeout, log)

	// Initialize use cases
	authUseCase := authbiz.NewAuthUseCase(userRepo, jwtManager)
	householdUseCase := householdbiz.NewHouseholdUseCase(householdRepo, d.Mailer, authUseCase, log)
	itemUseCase := inventorybiz.NewItemUseCase(householdUseCase, itemRepo, locationRepo, d.ObjStore, objstore.PhotoKey, log)
	locationUseCase := inventorybiz.NewLocationUseCase(householdUseCase, locationRepo)
	searchUseCase := searchbiz.NewSearchUseCase(householdUseCase, engine)
	exportUseCase := exportbiz.NewExportUseCase(householdUseCase, exportSource, exportJobs, d.ObjStore, pool, log)
	statsUseCase := adminbiz.NewStatsUseCase(householdUseCase, statsRepo, d.DB, pool, engine, log)

	// Initialize services
	services := &server.Services{
		Auth:      authservice.NewAuthService(authUseCase, log),
		Household: householdservice.NewHouseholdService(householdUseCase, log),
		Item:      inventoryservice.NewItemService(itemUseCase, log),
		Location:  inventoryservice.NewLocationService(locationUseCase, log),
		Search:    searchservice.NewSearchService(searchUseCase, log),
		Export:    exportservice.NewExportService(exportUseCase, log),
		Admin:     adminservice.NewAdminService(statsUseCase, log),
	}

	httpServer := server.NewHTTPServer(config, log, jwtManager, d.Redis, services)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

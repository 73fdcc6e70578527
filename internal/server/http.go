package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adminservice "github.com/nestkeep/nestkeep-backend/internal/admin/service"
	"github.com/nestkeep/nestkeep-backend/internal/auth"
	"github.com/nestkeep/nestkeep-backend/internal/auth/middleware"
	authservice "github.com/nestkeep/nestkeep-backend/internal/auth/service"
	"github.com/nestkeep/nestkeep-backend/internal/conf"
	exportservice "github.com/nestkeep/nestkeep-backend/internal/export/service"
	householdservice "github.com/nestkeep/nestkeep-backend/internal/household/service"
	inventoryservice "github.com/nestkeep/nestkeep-backend/internal/inventory/service"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/redis"
	searchservice "github.com/nestkeep/nestkeep-backend/internal/search/service"
)

// Services groups every HTTP service the router mounts.
type Services struct {
	Auth      *authservice.AuthService
	Household *householdservice.HouseholdService
	Item      *inventoryservice.ItemService
	Location  *inventoryservice.LocationService
	Search    *searchservice.SearchService
	Export    *exportservice.ExportService
	Admin     *adminservice.AdminService
}

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	jwtManager *auth.JWTManager,
	redisClient *redis.Client,
	svc *Services,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, "/health"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")

	// Public endpoints. Login and registration carry narrow rate limits
	// keyed by client IP.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RegisterRateLimiter(redisClient, log), svc.Auth.Register)
		authGroup.POST("/login", middleware.LoginRateLimiter(redisClient, log), svc.Auth.Login)
		authGroup.POST("/refresh", svc.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtManager, log))
	protected.Use(middleware.APIRateLimiter(redisClient, log))
	{
		protected.POST("/auth/logout", svc.Auth.Logout)
		protected.GET("/auth/me", svc.Auth.Me)

		households := protected.Group("/households")
		{
			households.POST("", svc.Household.CreateHousehold)
			households.GET("/mine", svc.Household.GetMyHousehold)
			households.PUT("/mine", svc.Household.UpdateHousehold)
			households.GET("/mine/members", svc.Household.ListMembers)
			households.POST("/mine/invites", svc.Household.InviteMember)
			households.POST("/invites/accept", svc.Household.AcceptInvite)
			households.DELETE("/mine/members/:user_id", svc.Household.RevokeMembership)
		}

		items := protected.Group("/items")
		{
			// The search route must precede the :id routes so "search"
			// is never parsed as an item ID.
			items.GET("/search", svc.Search.SearchItems)
			items.POST("", svc.Item.CreateItem)
			items.GET("", svc.Item.ListItems)
			items.GET("/:id", svc.Item.GetItem)
			items.PUT("/:id", svc.Item.UpdateItem)
			items.DELETE("/:id", svc.Item.DeleteItem)
			items.POST("/:id/photo", svc.Item.UploadPhoto)
			items.GET("/:id/photo", svc.Item.GetPhotoURL)
		}

		locations := protected.Group("/locations")
		{
			locations.POST("", svc.Location.CreateLocation)
			locations.GET("", svc.Location.ListLocations)
			locations.PUT("/:id", svc.Location.UpdateLocation)
			locations.DELETE("/:id", svc.Location.DeleteLocation)
			locations.GET("/:id/path", svc.Location.GetLocationPath)
		}

		exports := protected.Group("/exports")
		{
			exports.POST("", svc.Export.StartExport)
			exports.GET("/:id", svc.Export.GetJob)
			exports.GET("/:id/download", svc.Export.Download)
		}

		admin := protected.Group("/admin")
		{
			admin.GET("/stats", svc.Admin.GetStats)
			admin.GET("/search/capability", svc.Search.Capability)
		}
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

package service

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/admin/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
)

// AdminService exposes operational diagnostics.
type AdminService struct {
	uc     *biz.StatsUseCase
	logger *logger.Logger
}

// NewAdminService creates the admin service
func NewAdminService(uc *biz.StatsUseCase, log *logger.Logger) *AdminService {
	return &AdminService{uc: uc, logger: log}
}

// GetStats handles GET /admin/stats.
func (s *AdminService) GetStats(c *gin.Context) {
	stats, err := s.uc.GetStats(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, stats)
}

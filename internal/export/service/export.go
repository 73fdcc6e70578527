package service

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/export/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
)

// ExportService exposes CSV export jobs.
type ExportService struct {
	uc     *biz.ExportUseCase
	logger *logger.Logger
}

// NewExportService creates the export service
func NewExportService(uc *biz.ExportUseCase, log *logger.Logger) *ExportService {
	return &ExportService{uc: uc, logger: log}
}

// StartExport handles POST /exports.
func (s *ExportService) StartExport(c *gin.Context) {
	job, err := s.uc.StartExport(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Accepted(c, job)
}

// GetJob handles GET /exports/:id.
func (s *ExportService) GetJob(c *gin.Context) {
	job, err := s.uc.GetJob(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, job)
}

// Download handles GET /exports/:id/download.
func (s *ExportService) Download(c *gin.Context) {
	url, err := s.uc.DownloadURL(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

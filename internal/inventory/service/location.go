package service

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
)

// LocationService exposes the storage location tree.
type LocationService struct {
	uc     *biz.LocationUseCase
	logger *logger.Logger
}

// NewLocationService creates the location service
func NewLocationService(uc *biz.LocationUseCase, log *logger.Logger) *LocationService {
	return &LocationService{uc: uc, logger: log}
}

type LocationRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parent_id"`
}

// CreateLocation handles POST /locations.
func (s *LocationService) CreateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "location name is required")
		return
	}

	loc, err := s.uc.CreateLocation(c.Request.Context(), c.GetString("user_id"), req.Name, req.ParentID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, loc)
}

// ListLocations handles GET /locations.
func (s *LocationService) ListLocations(c *gin.Context) {
	locs, err := s.uc.ListLocations(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"locations": locs})
}

// UpdateLocation handles PUT /locations/:id.
func (s *LocationService) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "location name is required")
		return
	}

	loc, err := s.uc.UpdateLocation(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Name, req.ParentID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, loc)
}

// DeleteLocation handles DELETE /locations/:id.
func (s *LocationService) DeleteLocation(c *gin.Context) {
	if err := s.uc.DeleteLocation(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "location deleted"})
}

// GetLocationPath handles GET /locations/:id/path.
func (s *LocationService) GetLocationPath(c *gin.Context) {
	path, err := s.uc.PathOf(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"path": path})
}

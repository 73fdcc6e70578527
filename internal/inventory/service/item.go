package service

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/biz"
	"github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ItemService exposes inventory item CRUD and photo handling.
type ItemService struct {
	uc     *biz.ItemUseCase
	logger *logger.Logger
}

// NewItemService creates the item service
func NewItemService(uc *biz.ItemUseCase, log *logger.Logger) *ItemService {
	return &ItemService{uc: uc, logger: log}
}

// ListItemsRequest binds the query string of GET /items.
type ListItemsRequest struct {
	LocationID string `form:"location_id"`
	Status     string `form:"status"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// CreateItem handles POST /items.
func (s *ItemService) CreateItem(c *gin.Context) {
	var in biz.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid item payload")
		return
	}

	item, err := s.uc.CreateItem(c.Request.Context(), c.GetString("user_id"), &in)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, item)
}

// GetItem handles GET /items/:id.
func (s *ItemService) GetItem(c *gin.Context) {
	item, err := s.uc.GetItem(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, item)
}

// ListItems handles GET /items.
func (s *ItemService) ListItems(c *gin.Context) {
	var req ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid list parameters")
		return
	}

	items, total, err := s.uc.ListItems(c.Request.Context(), c.GetString("user_id"), &types.ItemFilter{
		LocationID: req.LocationID,
		Status:     req.Status,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"items":       items,
		"total_count": total,
	})
}

// UpdateItem handles PUT /items/:id.
func (s *ItemService) UpdateItem(c *gin.Context) {
	var in biz.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid item payload")
		return
	}

	item, err := s.uc.UpdateItem(c.Request.Context(), c.GetString("user_id"), c.Param("id"), &in)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteItem handles DELETE /items/:id.
func (s *ItemService) DeleteItem(c *gin.Context) {
	if err := s.uc.DeleteItem(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "item deleted"})
}

// UploadPhoto handles POST /items/:id/photo (multipart form, field
// "photo").
func (s *ItemService) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "photo file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read photo file")
		return
	}
	defer src.Close()

	item, err := s.uc.AttachPhoto(c.Request.Context(), c.GetString("user_id"), c.Param("id"),
		file.Filename, src, file.Size)
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("photo upload failed",
			zap.String("item_id", c.Param("id")),
			zap.Error(err),
		)
		response.HandleError(c, err)
		return
	}
	response.Success(c, item)
}

// GetPhotoURL handles GET /items/:id/photo.
func (s *ItemService) GetPhotoURL(c *gin.Context) {
	url, err := s.uc.PhotoURL(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

package service

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/household/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// HouseholdService exposes household and membership management.
type HouseholdService struct {
	uc     *biz.HouseholdUseCase
	logger *logger.Logger
}

// NewHouseholdService creates the household service
func NewHouseholdService(uc *biz.HouseholdUseCase, log *logger.Logger) *HouseholdService {
	return &HouseholdService{uc: uc, logger: log}
}

type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreateHousehold handles POST /households.
func (s *HouseholdService) CreateHousehold(c *gin.Context) {
	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "household name is required")
		return
	}

	h, err := s.uc.CreateHousehold(c.Request.Context(), c.GetString("user_id"), req.Name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, h)
}

// GetMyHousehold handles GET /households/me.
func (s *HouseholdService) GetMyHousehold(c *gin.Context) {
	h, err := s.uc.GetMyHousehold(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, h)
}

// UpdateHousehold handles PUT /households/me.
func (s *HouseholdService) UpdateHousehold(c *gin.Context) {
	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "household name is required")
		return
	}

	h, err := s.uc.UpdateHousehold(c.Request.Context(), c.GetString("user_id"), req.Name)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, h)
}

// ListMembers handles GET /households/me/members.
func (s *HouseholdService) ListMembers(c *gin.Context) {
	members, err := s.uc.ListMembers(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"members": members})
}

// InviteMember handles POST /households/me/invites.
func (s *HouseholdService) InviteMember(c *gin.Context) {
	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "a valid email is required")
		return
	}

	inv, err := s.uc.InviteMember(c.Request.Context(), c.GetString("user_id"), req.Email)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.logger.WithContext(c.Request.Context()).Info("member invited",
		zap.String("household_id", inv.HouseholdID),
		zap.String("invite_id", inv.ID),
	)
	response.Created(c, inv)
}

// AcceptInvite handles POST /households/invites/accept.
func (s *HouseholdService) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invite token is required")
		return
	}

	m, err := s.uc.AcceptInvite(c.Request.Context(), c.GetString("user_id"), req.Token)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, m)
}

// RevokeMembership handles DELETE /households/me/members/:user_id.
func (s *HouseholdService) RevokeMembership(c *gin.Context) {
	memberID := c.Param("user_id")
	if memberID == "" {
		response.BadRequest(c, "member user id is required")
		return
	}

	if err := s.uc.RevokeMembership(c.Request.Context(), c.GetString("user_id"), memberID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "membership revoked"})
}

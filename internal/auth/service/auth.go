package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/auth/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AuthService exposes registration and session management.
type AuthService struct {
	uc     *biz.AuthUseCase
	logger *logger.Logger
}

// NewAuthService creates the auth service
func NewAuthService(uc *biz.AuthUseCase, log *logger.Logger) *AuthService {
	return &AuthService{uc: uc, logger: log}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse is the public account shape. The password hash and
// refresh token never leave the server.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Register handles POST /auth/register.
func (s *AuthService) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, email and password are required")
		return
	}

	user, err := s.uc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	s.logger.WithContext(c.Request.Context()).Info("user registered",
		zap.String("user_id", user.ID))
	response.Created(c, toUserResponse(user))
}

// Login handles POST /auth/login.
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	result, err := s.uc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":   toUserResponse(result.User),
		"tokens": result.Tokens,
	})
}

// Refresh handles POST /auth/refresh.
func (s *AuthService) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh token is required")
		return
	}

	tokens, err := s.uc.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, tokens)
}

// Logout handles POST /auth/logout.
func (s *AuthService) Logout(c *gin.Context) {
	if err := s.uc.Logout(c.Request.Context(), c.GetString("user_id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "logged out"})
}

// Me handles GET /auth/me.
func (s *AuthService) Me(c *gin.Context) {
	user, err := s.uc.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, toUserResponse(user))
}

func toUserResponse(u *biz.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

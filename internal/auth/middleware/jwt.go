package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/auth"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// JWTAuth authenticates requests and injects user_id and email into the
// gin context. Tokens come from the Authorization header, or from the
// token query param for download links that cannot set headers.
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		var err error

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			token, err = auth.ExtractTokenFromHeader(authHeader)
			if err != nil {
				response.Unauthorized(c, "invalid authorization header")
				c.Abort()
				return
			}
		} else {
			token = c.Query("token")
			if token == "" {
				response.Unauthorized(c, "missing authorization")
				c.Abort()
				return
			}
		}

		claims, err := jwtManager.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// GetUserID reads the authenticated user id from the gin context.
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}

package middleware

import (
	"strings"

	"github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/MLBB-BOSS/MLSnap/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ServiceKey holds the authenticated caller's service name in the gin context.
const ServiceKey = "service"

// ServiceAuth requires a bearer service token signed with secret. An empty secret
// disables the check, for local development.
func ServiceAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		logger.Warn().Msg("JWT_SECRET is not set, API authentication is disabled")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, errors.Unauthorized("Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, errors.Unauthorized("Invalid authorization header format"))
			return
		}

		claims, err := utils.ValidateToken(secret, parts[1])
		if err != nil {
			abortWith(c, errors.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(ServiceKey, claims.Service)
		c.Next()
	}
}

func abortWith(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"error": appErr.Message,
		"code":  appErr.Kind,
	})
}

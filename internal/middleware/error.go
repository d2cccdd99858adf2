package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandlerMiddleware handles errors and panics
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", stack).
					Str("request_id", c.GetString(RequestIDKey)).
					Msg("Panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
					"code":  errors.KindStorage,
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.As(err)
		if !ok {
			logger.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("Unhandled request error")
			appErr = errors.Storage(err)
		}

		c.JSON(appErr.Status, gin.H{
			"error":     appErr.Message,
			"code":      appErr.Kind,
			"retryable": appErr.Retryable(),
		})
	}
}

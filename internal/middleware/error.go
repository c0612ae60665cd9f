package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/logger"
)

// ErrorHandler renders the last error attached to the gin context as the
// standard {"error":{"code","message"}} body. Internal causes are logged
// with the request ID and never sent to the client. A request whose
// deadline expired while waiting on a plan lock reports PLAN_LOCKED.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, new(*apperrors.AppError)) {
			err = apperrors.Wrap(apperrors.ErrPlanLocked, err)
		}

		appErr := apperrors.ErrInternalServer
		if !errors.As(err, &appErr) {
			appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if appErr.Internal != nil {
			logger.Get().Errorw("request failed",
				"request_id", c.GetString(requestIDKey),
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

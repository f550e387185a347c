package middleware

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/core/apperror"
	"gelateria/internal/infrastructure/http/v1/dto"
	"gelateria/pkg/logger"
)

// ErrorHandler transforms errors into consistent JSON responses. It is
// the single place that writes error bodies; handlers only register
// errors on the gin context. Internal details stay in the logs.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			c.JSON(appErr.HTTPStatus, dto.Response{
				Success: false,
				Error: &dto.ErrorBody{
					Code:    appErr.Code,
					Message: appErr.Message,
					Details: appErr.Details,
				},
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)

		c.JSON(500, dto.Response{
			Success: false,
			Error: &dto.ErrorBody{
				Code:    apperror.CodeInternal,
				Message: "internal server error",
				Details: map[string]any{"request_id": c.GetString("request_id")},
			},
		})
	}
}

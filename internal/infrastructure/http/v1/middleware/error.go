package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billcraft/internal/core/apperror"
	"billcraft/internal/infrastructure/http/v1/dto"
	"billcraft/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON envelopes.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			// Log internal cause if present
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			c.JSON(appErr.HTTPStatus, dto.Fail(appErr.Message, dto.ErrorItem{
				Code:    string(appErr.Code),
				Message: appErr.Message,
				Details: appErr.Details,
			}))
			return
		}

		// Unknown error - log and return generic message
		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(http.StatusInternalServerError, dto.Fail("Internal server error", dto.ErrorItem{
			Code:    string(apperror.CodeInternal),
			Message: "Internal server error",
			Details: map[string]any{"request_id": c.GetString("request_id")},
		}))
	}
}

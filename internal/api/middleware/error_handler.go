package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"scribed/internal/api/errors"
)

// ErrorHandler recovers from handler panics and renders them as APIError
// bodies. Non-APIError panics are logged with the request context and
// masked as a generic internal error.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		apiErr, ok := recovered.(*errors.APIError)
		if !ok {
			if err, isErr := recovered.(error); isErr {
				logger.Error("unhandled error",
					"error", err.Error(),
					"request_id", requestID,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
			} else {
				logger.Error("unhandled panic",
					"recovered", recovered,
					"request_id", requestID,
				)
			}
			apiErr = errors.NewInternalError("Internal server error")
		}
		apiErr.RequestID = requestID

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes an APIError response. Errors that are not APIErrors
// are re-panicked so ErrorHandler logs them.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr, ok := err.(*errors.APIError)
	if !ok {
		panic(err)
	}

	apiErr.RequestID = c.GetString("request_id")
	c.Header("Content-Type", "application/json")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}

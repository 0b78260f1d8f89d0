package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"scribed/internal/api/errors"
)

// currentUser resolves the acting user from the X-User-ID header. The real
// authentication lives in the gateway in front of this service; by the time
// a request lands here the header is trusted.
func currentUser(c *gin.Context) (int64, error) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return 0, errors.NewUnauthorizedError("Missing X-User-ID header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("Invalid X-User-ID header")
	}
	return id, nil
}

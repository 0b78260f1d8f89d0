package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"scribed/internal/api/middleware"
	"scribed/internal/api/v1/dto"
	"scribed/internal/api/v1/services"
	"scribed/internal/app/model"
)

// UsageHandler handles usage and quota endpoints.
type UsageHandler struct {
	service services.UsageService
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(service services.UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

// Get handles GET /api/v1/usage?window=daily|weekly|monthly
func (h *UsageHandler) Get(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var q dto.UsageQuery
	if err := middleware.ValidateQuery(c, &q); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.Window(c.Request.Context(), userID, model.UsageWindow(q.Window))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /api/v1/usage/summary
func (h *UsageHandler) Summary(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckQuota handles GET /api/v1/usage/quota
func (h *UsageHandler) CheckQuota(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var q dto.QuotaQuery
	if err := middleware.ValidateQuery(c, &q); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.CheckQuota(c.Request.Context(), userID, &q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

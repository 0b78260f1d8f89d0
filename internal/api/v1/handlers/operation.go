package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"scribed/internal/api/errors"
	"scribed/internal/api/middleware"
	"scribed/internal/api/v1/dto"
	"scribed/internal/api/v1/services"
)

// OperationHandler handles LLM operation endpoints.
type OperationHandler struct {
	service services.OperationService
}

// NewOperationHandler creates a new operation handler.
func NewOperationHandler(service services.OperationService) *OperationHandler {
	return &OperationHandler{service: service}
}

func operationID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("Invalid operation ID")
	}
	return id, nil
}

// Create handles POST /api/v1/operations
func (h *OperationHandler) Create(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.CreateOperationRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /api/v1/operations/:id
func (h *OperationHandler) Get(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	id, err := operationID(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	admin := c.Query("admin") == "1"
	resp, err := h.service.Get(c.Request.Context(), id, userID, admin)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transition handles POST /api/v1/operations/:id/transition (worker side).
func (h *OperationHandler) Transition(c *gin.Context) {
	id, err := operationID(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.TransitionOperationRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.Transition(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateResult handles PUT /api/v1/operations/:id/result
func (h *OperationHandler) UpdateResult(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	id, err := operationID(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.UpdateResultRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.service.UpdateResult(c.Request.Context(), id, userID, req.Result)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"scribed/internal/api/middleware"
	"scribed/internal/api/v1/dto"
	"scribed/internal/api/v1/services"
	"scribed/internal/app/model"
)

// JobHandler handles transcription job endpoints.
type JobHandler struct {
	service services.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(service services.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Create handles POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var req dto.CreateJobRequest
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

// Get handles GET /api/v1/jobs/:id
// Admin callers pass ?admin=1 to skip the ownership check.
func (h *JobHandler) Get(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	admin := c.Query("admin") == "1"
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"), userID, admin)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.service.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /api/v1/jobs/:id/cancel
func (h *JobHandler) Cancel(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": string(model.JobStatusCancelling)})
}

// Delete handles DELETE /api/v1/jobs/:id (soft delete).
func (h *JobHandler) Delete(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore handles POST /api/v1/jobs/:id/restore
func (h *JobHandler) Restore(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Restore(c.Request.Context(), c.Param("id"), userID); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AppendProgress handles POST /api/v1/jobs/:id/progress (worker side).
func (h *JobHandler) AppendProgress(c *gin.Context) {
	var req dto.AppendProgressRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.AppendProgress(c.Request.Context(), c.Param("id"), req.Message); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transition handles POST /api/v1/jobs/:id/status (worker side).
func (h *JobHandler) Transition(c *gin.Context) {
	var req dto.TransitionJobRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Transition(c.Request.Context(), c.Param("id"), model.JobStatus(req.Status)); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete handles POST /api/v1/jobs/:id/complete (worker side).
func (h *JobHandler) Complete(c *gin.Context) {
	var req dto.CompleteJobRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Complete(c.Request.Context(), c.Param("id"), &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Fail handles POST /api/v1/jobs/:id/fail (worker side).
func (h *JobHandler) Fail(c *gin.Context) {
	var req dto.FailJobRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.Fail(c.Request.Context(), c.Param("id"), req.ErrorMessage); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetTitleStatus handles POST /api/v1/jobs/:id/title (worker side).
func (h *JobHandler) SetTitleStatus(c *gin.Context) {
	var req dto.SetTitleStatusRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	err := h.service.SetTitleStatus(c.Request.Context(), c.Param("id"),
		model.TitleStatus(req.Status), req.GeneratedTitle)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

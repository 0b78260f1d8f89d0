package dto

import (
	"time"

	"scribed/internal/api/errors"
	"scribed/internal/app/model"
)

// CreateOperationRequest creates an LLM operation.
type CreateOperationRequest struct {
	Provider      string  `json:"provider" binding:"required"`
	OperationType string  `json:"operation_type" binding:"required"`
	InputText     string  `json:"input_text" binding:"required"`
	JobID         *string `json:"job_id,omitempty"`
	PromptID      *int64  `json:"prompt_id,omitempty"`
}

// Validate rejects unknown operation types.
func (r *CreateOperationRequest) Validate() error {
	if !model.ValidOperationType(model.OperationType(r.OperationType)) {
		return errors.NewValidationError("Validation failed", map[string]string{
			"operation_type": "must be one of the allowed values",
		})
	}
	return nil
}

// TransitionOperationRequest moves the operation's status (worker side).
type TransitionOperationRequest struct {
	Status string   `json:"status" binding:"required"`
	Result *string  `json:"result,omitempty"`
	Error  *string  `json:"error,omitempty"`
	Cost   *float64 `json:"cost,omitempty"`
}

// Validate checks status validity and the terminal result/error pairing.
func (r *TransitionOperationRequest) Validate() error {
	status := model.OperationStatus(r.Status)
	if !model.ValidOperationStatus(status) {
		return errors.NewValidationError("Validation failed", map[string]string{
			"status": "must be one of the allowed values",
		})
	}
	if status == model.OperationStatusError && (r.Error == nil || *r.Error == "") {
		return errors.NewValidationError("Validation failed", map[string]string{
			"error": "is required for an error transition",
		})
	}
	if status == model.OperationStatusFinished && (r.Result == nil || *r.Result == "") {
		return errors.NewValidationError("Validation failed", map[string]string{
			"result": "is required for a finished transition",
		})
	}
	return nil
}

// UpdateResultRequest edits a completed operation's result text.
type UpdateResultRequest struct {
	Result string `json:"result" binding:"required"`
}

// OperationResponse is the API view of an LLM operation.
type OperationResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	JobID         *string    `json:"job_id,omitempty"`
	Provider      string     `json:"provider"`
	OperationType string     `json:"operation_type"`
	InputText     string     `json:"input_text"`
	PromptID      *int64     `json:"prompt_id,omitempty"`
	Status        string     `json:"status"`
	Result        *string    `json:"result,omitempty"`
	Error         *string    `json:"error,omitempty"`
	Cost          *float64   `json:"cost,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

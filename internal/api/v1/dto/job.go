package dto

import (
	"time"

	"scribed/internal/api/errors"
	"scribed/internal/app/model"
)

// PendingWorkflowRequest stages a workflow to run once the job finishes.
type PendingWorkflowRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	OriginID int64  `json:"origin_id"`
}

// CreateJobRequest creates a transcription job. The ID is optional; one is
// generated when the client does not supply it.
type CreateJobRequest struct {
	ID                 string                  `json:"id"`
	FileName           string                  `json:"file_name" binding:"required"`
	APIUsed            string                  `json:"api_used" binding:"required"`
	FileSizeMB         float64                 `json:"file_size_mb" binding:"gte=0"`
	AudioLengthMinutes float64                 `json:"audio_length_minutes" binding:"gte=0"`
	EstimatedCost      float64                 `json:"estimated_cost" binding:"gte=0"`
	ContextPromptUsed  bool                    `json:"context_prompt_used"`
	PendingWorkflow    *PendingWorkflowRequest `json:"pending_workflow,omitempty"`
}

// AppendProgressRequest adds one line to the job's progress log.
type AppendProgressRequest struct {
	Message string `json:"message" binding:"required"`
}

// TransitionJobRequest moves the job's main status (worker side).
type TransitionJobRequest struct {
	Status string `json:"status" binding:"required"`
}

// Validate rejects unknown statuses and the terminal targets that carry
// their own payloads. Finished needs the transcript and error needs the
// message, so those land on the complete and fail endpoints; cancelled is
// accepted here as the worker's cancellation ack.
func (r *TransitionJobRequest) Validate() error {
	status := model.JobStatus(r.Status)
	if !model.ValidJobStatus(status) {
		return errors.NewValidationError("Validation failed", map[string]string{
			"status": "must be one of the allowed values",
		})
	}
	if status == model.JobStatusFinished || status == model.JobStatusError {
		return errors.NewValidationError("Validation failed", map[string]string{
			"status": "finished and error are reported via the complete and fail endpoints",
		})
	}
	return nil
}

// CompleteJobRequest finalizes a successful transcription.
type CompleteJobRequest struct {
	TranscriptionText string   `json:"transcription_text" binding:"required"`
	DetectedLanguage  string   `json:"detected_language" binding:"required"`
	Cost              *float64 `json:"cost,omitempty"`
}

// FailJobRequest records a terminal failure.
type FailJobRequest struct {
	ErrorMessage string `json:"error_message" binding:"required"`
}

// SetTitleStatusRequest drives the title-generation sub-machine.
type SetTitleStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	GeneratedTitle *string `json:"generated_title,omitempty"`
}

// Validate rejects unknown title statuses.
func (r *SetTitleStatusRequest) Validate() error {
	if !model.ValidTitleStatus(model.TitleStatus(r.Status)) {
		return errors.NewValidationError("Validation failed", map[string]string{
			"status": "must be one of the allowed values",
		})
	}
	return nil
}

// ProgressLineResponse is one progress log entry.
type ProgressLineResponse struct {
	RecordedAt time.Time `json:"recorded_at"`
	Message    string    `json:"message"`
}

// JobResponse is the API view of a job.
type JobResponse struct {
	ID                 string                 `json:"id"`
	UserID             int64                  `json:"user_id"`
	FileName           string                 `json:"file_name"`
	APIUsed            string                 `json:"api_used"`
	FileSizeMB         float64                `json:"file_size_mb"`
	AudioLengthMinutes float64                `json:"audio_length_minutes"`
	ContextPromptUsed  bool                   `json:"context_prompt_used"`
	CreatedAt          time.Time              `json:"created_at"`
	Status             string                 `json:"status"`
	ErrorMessage       *string                `json:"error_message,omitempty"`
	TranscriptionText  *string                `json:"transcription_text,omitempty"`
	DetectedLanguage   *string                `json:"detected_language,omitempty"`
	Cost               *float64               `json:"cost,omitempty"`
	TitleStatus        string                 `json:"title_generation_status"`
	GeneratedTitle     *string                `json:"generated_title,omitempty"`
	Hidden             bool                   `json:"is_hidden_from_user"`
	HiddenReason       *string                `json:"hidden_reason,omitempty"`
	LLMOperationID     *int64                 `json:"llm_operation_id,omitempty"`
	LLMOperationStatus *string                `json:"llm_operation_status,omitempty"`
	LLMOperationResult *string                `json:"llm_operation_result,omitempty"`
	ProgressLog        []ProgressLineResponse `json:"progress_log,omitempty"`
}

// JobListResponse is a page of jobs.
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

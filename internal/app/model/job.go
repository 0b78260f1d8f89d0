package model

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusFinished   JobStatus = "finished"
	JobStatusError      JobStatus = "error"
	JobStatusCancelling JobStatus = "cancelling"
	JobStatusCancelled  JobStatus = "cancelled"
)

// TitleStatus tracks the title-generation sub-machine. It runs independently
// of the main job status and terminates on its own.
type TitleStatus string

const (
	TitleStatusPending    TitleStatus = "pending"
	TitleStatusProcessing TitleStatus = "processing"
	TitleStatusSuccess    TitleStatus = "success"
	TitleStatusFailed     TitleStatus = "failed"
	// TitleStatusDisabled is a terminal non-error state used when the owning
	// role does not allow title generation. Not the same as failed.
	TitleStatusDisabled TitleStatus = "disabled"
)

// HiddenReason records why a job was soft-deleted.
type HiddenReason string

const (
	HiddenReasonUserDeleted     HiddenReason = "USER_DELETED"
	HiddenReasonRetentionPolicy HiddenReason = "RETENTION_POLICY"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing, JobStatusCancelling, JobStatusError},
	JobStatusProcessing: {JobStatusFinished, JobStatusError, JobStatusCancelling},
	JobStatusCancelling: {JobStatusCancelled, JobStatusFinished, JobStatusError},
}

var jobStatuses = []JobStatus{
	JobStatusPending, JobStatusProcessing, JobStatusFinished,
	JobStatusError, JobStatusCancelling, JobStatusCancelled,
}

// JobStatuses enumerates every known job status in declaration order.
func JobStatuses() []JobStatus {
	return jobStatuses
}

// ValidJobStatus reports whether s is one of the known job statuses.
func ValidJobStatus(s JobStatus) bool {
	for _, known := range jobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether a job status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusError || s == JobStatusCancelled
}

// CanTransition reports whether moving from s to next is allowed. Repeating
// the current status is permitted so that storage-level retries stay
// idempotent.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether a cancellation request may be accepted.
func (s JobStatus) Cancellable() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// Terminal reports whether a title status admits no further transitions.
// The title machine has no transition table: the job row only mirrors the
// title operation's state, so intermediate statuses may legitimately be
// skipped and the storage guard checks terminality alone.
func (s TitleStatus) Terminal() bool {
	return s == TitleStatusSuccess || s == TitleStatusFailed || s == TitleStatusDisabled
}

// ValidTitleStatus reports whether s is one of the known title statuses.
func ValidTitleStatus(s TitleStatus) bool {
	switch s {
	case TitleStatusPending, TitleStatusProcessing, TitleStatusSuccess,
		TitleStatusFailed, TitleStatusDisabled:
		return true
	}
	return false
}

// PendingWorkflow stages a workflow request made before the job itself has
// finished. It is consumed once the transcript is available.
type PendingWorkflow struct {
	Prompt   string `json:"prompt"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	OriginID int64  `json:"origin_id"`
}

// Job is a transcription job tracked from submission to terminal state.
type Job struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`

	// Immutable at creation.
	FileName           string    `json:"file_name"`
	APIUsed            string    `json:"api_used"`
	FileSizeMB         float64   `json:"file_size_mb"`
	AudioLengthMinutes float64   `json:"audio_length_minutes"`
	ContextPromptUsed  bool      `json:"context_prompt_used"`
	CreatedAt          time.Time `json:"created_at"`

	// Lifecycle.
	Status            JobStatus      `json:"status"`
	ErrorMessage      *string        `json:"error_message,omitempty"`
	TranscriptionText *string        `json:"transcription_text,omitempty"`
	DetectedLanguage  *string        `json:"detected_language,omitempty"`
	ProgressLog       []ProgressLine `json:"progress_log,omitempty"`
	Cost              *float64       `json:"cost,omitempty"`

	// Title generation sub-machine.
	TitleStatus    TitleStatus `json:"title_generation_status"`
	GeneratedTitle *string     `json:"generated_title,omitempty"`

	// Visibility / retention.
	Hidden       bool          `json:"is_hidden_from_user"`
	HiddenDate   *time.Time    `json:"hidden_date,omitempty"`
	HiddenReason *HiddenReason `json:"hidden_reason,omitempty"`

	// Denormalized workflow linkage for fast reads.
	LLMOperationID     *int64     `json:"llm_operation_id,omitempty"`
	LLMOperationStatus *string    `json:"llm_operation_status,omitempty"`
	LLMOperationResult *string    `json:"llm_operation_result,omitempty"`
	LLMOperationError  *string    `json:"llm_operation_error,omitempty"`
	LLMOperationRanAt  *time.Time `json:"llm_operation_ran_at,omitempty"`

	PendingWorkflow *PendingWorkflow `json:"pending_workflow,omitempty"`
}

// ProgressLine is one timestamped entry of a job's append-only progress log.
type ProgressLine struct {
	RecordedAt time.Time `json:"recorded_at"`
	Message    string    `json:"message"`
}

// Validate checks the cross-field invariants a job row must hold. The store
// calls it at the deserialization boundary so broken rows fail loudly instead
// of leaking half-populated entities.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job: missing id")
	}
	if j.UserID == 0 {
		return fmt.Errorf("job %s: missing user id", j.ID)
	}
	if !ValidJobStatus(j.Status) {
		return fmt.Errorf("job %s: unknown status %q", j.ID, j.Status)
	}
	if !ValidTitleStatus(j.TitleStatus) {
		return fmt.Errorf("job %s: unknown title status %q", j.ID, j.TitleStatus)
	}
	if (j.Status == JobStatusError) != (j.ErrorMessage != nil) {
		return fmt.Errorf("job %s: error_message must be set iff status is error", j.ID)
	}
	if j.TranscriptionText != nil && j.Status != JobStatusFinished {
		return fmt.Errorf("job %s: transcription_text set while status is %s", j.ID, j.Status)
	}
	if j.Hidden != (j.HiddenDate != nil) || j.Hidden != (j.HiddenReason != nil) {
		return fmt.Errorf("job %s: hidden_date and hidden_reason must be set together", j.ID)
	}
	return nil
}

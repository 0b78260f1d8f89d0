package model

import (
	"fmt"
	"time"
)

// OperationStatus is the lifecycle state of an LLM operation.
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "pending"
	OperationStatusProcessing OperationStatus = "processing"
	OperationStatusFinished   OperationStatus = "finished"
	OperationStatusError      OperationStatus = "error"
)

// OperationType distinguishes title generation from user-triggered workflows.
type OperationType string

const (
	OperationTypeTitleGeneration OperationType = "title_generation"
	OperationTypeWorkflow        OperationType = "workflow"
)

// ValidOperationStatus reports whether s is one of the known statuses.
func ValidOperationStatus(s OperationStatus) bool {
	switch s {
	case OperationStatusPending, OperationStatusProcessing,
		OperationStatusFinished, OperationStatusError:
		return true
	}
	return false
}

// Terminal reports whether the operation reached a final state.
func (s OperationStatus) Terminal() bool {
	return s == OperationStatusFinished || s == OperationStatusError
}

// ValidOperationType reports whether t is a known operation type.
func ValidOperationType(t OperationType) bool {
	return t == OperationTypeTitleGeneration || t == OperationTypeWorkflow
}

// Operation is one LLM invocation, optionally linked to a job. The job link
// is nullable: the operation stays auditable after its job is purged.
type Operation struct {
	ID     int64   `json:"id"`
	UserID int64   `json:"user_id"`
	JobID  *string `json:"job_id,omitempty"`

	Provider      string        `json:"provider"`
	OperationType OperationType `json:"operation_type"`
	InputText     string        `json:"input_text"`
	PromptID      *int64        `json:"prompt_id,omitempty"`

	Status      OperationStatus `json:"status"`
	Result      *string         `json:"result,omitempty"`
	Error       *string         `json:"error,omitempty"`
	Cost        *float64        `json:"cost,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Validate checks the invariants an operation row must hold.
func (o *Operation) Validate() error {
	if o.UserID == 0 {
		return fmt.Errorf("operation %d: missing user id", o.ID)
	}
	if !ValidOperationStatus(o.Status) {
		return fmt.Errorf("operation %d: unknown status %q", o.ID, o.Status)
	}
	if !ValidOperationType(o.OperationType) {
		return fmt.Errorf("operation %d: unknown type %q", o.ID, o.OperationType)
	}
	if o.Status.Terminal() != (o.CompletedAt != nil) {
		return fmt.Errorf("operation %d: completed_at must be set iff status is terminal", o.ID)
	}
	if o.Status == OperationStatusFinished && o.Error != nil {
		return fmt.Errorf("operation %d: finished operation carries an error", o.ID)
	}
	if o.Status == OperationStatusError && o.Error == nil {
		return fmt.Errorf("operation %d: errored operation missing error text", o.ID)
	}
	return nil
}

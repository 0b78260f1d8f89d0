package repository

import (
	"context"
	"time"

	"scribed/internal/app/model"
)

// CreateJobParams collects everything needed to insert a job at pending.
type CreateJobParams struct {
	ID                 string
	UserID             int64
	FileName           string
	APIUsed            string
	FileSizeMB         float64
	AudioLengthMinutes float64
	ContextPromptUsed  bool
	PendingWorkflow    *model.PendingWorkflow
}

// CreateOperationParams collects everything needed to insert an LLM operation.
type CreateOperationParams struct {
	UserID        int64
	Provider      string
	OperationType model.OperationType
	InputText     string
	JobID         *string
	PromptID      *int64
}

// JobDAO is the persistence contract for transcription jobs.
//
// Boolean-returning methods collapse "not found", "wrong owner" and
// "precondition failed" into false; callers that need to distinguish them run
// a separate diagnostic lookup.
type JobDAO interface {
	Create(ctx context.Context, p CreateJobParams) error
	Get(ctx context.Context, id string) (*model.Job, error)
	GetForUser(ctx context.Context, id string, userID int64) (*model.Job, error)
	ListVisible(ctx context.Context, userID int64, page, limit int) ([]model.Job, int64, error)

	AppendProgress(ctx context.Context, id, message string) error
	TransitionStatus(ctx context.Context, id string, status model.JobStatus) error
	FinalizeSuccess(ctx context.Context, id, transcriptionText, detectedLanguage string) error
	SetError(ctx context.Context, id, message string) error
	SetCost(ctx context.Context, id string, cost float64) error

	// RequestCancel flips pending/processing rows to cancelling; MarkCancelled
	// completes the handshake from the worker side. Both are guarded updates
	// so a terminal status written concurrently always wins.
	RequestCancel(ctx context.Context, id string, userID int64) (bool, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)

	SetTitleStatus(ctx context.Context, id string, status model.TitleStatus, generatedTitle *string) error
	AttachOperation(ctx context.Context, jobID string, op *model.Operation) error

	SoftDelete(ctx context.Context, id string, userID int64) (bool, error)
	Restore(ctx context.Context, id string, userID int64) (bool, error)

	// Retention sweep primitives. Each runs in its own transaction; a failed
	// batch rolls back in full.
	HideOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error)
	HideExcess(ctx context.Context, userID int64, keep int64) (int64, error)
	PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// OperationDAO is the persistence contract for LLM operations.
type OperationDAO interface {
	Create(ctx context.Context, p CreateOperationParams) (int64, error)
	Get(ctx context.Context, id int64) (*model.Operation, error)
	GetForUser(ctx context.Context, id, userID int64) (*model.Operation, error)
	Transition(ctx context.Context, id int64, status model.OperationStatus, result, errText *string) (bool, error)
	UpdateResult(ctx context.Context, id, userID int64, result string) (bool, error)
	SetCost(ctx context.Context, id int64, cost float64) (bool, error)
}

// UsageDAO is the persistence contract for the usage ledger. Increments are
// single-statement additive upserts: concurrent calls for the same (user,
// day) must all survive.
type UsageDAO interface {
	RecordTranscriptionUsage(ctx context.Context, userID int64, cost, minutes float64) error
	RecordWorkflowUsage(ctx context.Context, userID int64) error
	GetUsage(ctx context.Context, userID int64, from, to time.Time) (model.UsageTotals, error)
}

// UserRetentionPolicy pairs a user with the retention half of their role's
// limit snapshot.
type UserRetentionPolicy struct {
	UserID               int64
	MaxHistoryItems      int64
	HistoryRetentionDays int64
}

// RoleLimitDAO reads the role/permission subsystem's tables. This side only
// ever reads them.
type RoleLimitDAO interface {
	LimitsForRole(ctx context.Context, roleID int64) (*model.RoleLimits, error)
	LimitsForUser(ctx context.Context, userID int64) (*model.RoleLimits, error)
	ListRetentionPolicies(ctx context.Context) ([]UserRetentionPolicy, error)
}

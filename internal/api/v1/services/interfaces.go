package services

import (
	"context"

	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
)

// JobService drives transcription jobs through their lifecycle.
type JobService interface {
	Create(ctx context.Context, userID int64, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	Get(ctx context.Context, id string, userID int64, admin bool) (*dto.JobResponse, error)
	List(ctx context.Context, userID int64, page, limit int) (*dto.JobListResponse, error)
	Cancel(ctx context.Context, id string, userID int64) error
	Delete(ctx context.Context, id string, userID int64) error
	Restore(ctx context.Context, id string, userID int64) error

	// Worker-facing operations.
	AppendProgress(ctx context.Context, id, message string) error
	Transition(ctx context.Context, id string, status model.JobStatus) error
	Complete(ctx context.Context, id string, req *dto.CompleteJobRequest) error
	Fail(ctx context.Context, id, message string) error
	SetTitleStatus(ctx context.Context, id string, status model.TitleStatus, generatedTitle *string) error
}

// OperationService drives LLM operations and mirrors their state into the
// linked job.
type OperationService interface {
	Create(ctx context.Context, userID int64, req *dto.CreateOperationRequest) (*dto.OperationResponse, error)
	Get(ctx context.Context, id, userID int64, admin bool) (*dto.OperationResponse, error)
	Transition(ctx context.Context, id int64, req *dto.TransitionOperationRequest) (*dto.OperationResponse, error)
	UpdateResult(ctx context.Context, id, userID int64, result string) (*dto.OperationResponse, error)
}

// UsageService exposes windowed usage reads and pre-flight quota checks.
type UsageService interface {
	Window(ctx context.Context, userID int64, window model.UsageWindow) (*dto.UsageResponse, error)
	Summary(ctx context.Context, userID int64) (*dto.UsageSummaryResponse, error)
	CheckQuota(ctx context.Context, userID int64, q *dto.QuotaQuery) (*dto.QuotaDecisionResponse, error)
}

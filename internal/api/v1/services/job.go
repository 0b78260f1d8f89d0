package services

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"scribed/internal/api/errors"
	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
	"scribed/internal/app/quota"
	"scribed/internal/app/repository"
	"scribed/internal/app/repository/sqlstore"
	"scribed/internal/app/telemetry"
)

// JobServiceImpl implements JobService.
type JobServiceImpl struct {
	jobs   repository.JobDAO
	usage  repository.UsageDAO
	quota  *quota.Evaluator
	logger *slog.Logger
}

// NewJobService creates a new job service.
func NewJobService(jobs repository.JobDAO, usage repository.UsageDAO, evaluator *quota.Evaluator, logger *slog.Logger) *JobServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobServiceImpl{jobs: jobs, usage: usage, quota: evaluator, logger: logger}
}

var _ JobService = (*JobServiceImpl)(nil)

// Create authorizes the job against the user's quota and inserts it at
// pending. The transcription worker picks it up out of band.
func (s *JobServiceImpl) Create(ctx context.Context, userID int64, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	decision, err := s.quota.CheckTranscription(ctx, userID, req.EstimatedCost, req.AudioLengthMinutes)
	if err != nil {
		s.logger.Error("quota check failed", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to evaluate quota")
	}
	if !decision.Allowed {
		return nil, errors.NewForbiddenError(decision.Reason)
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	params := repository.CreateJobParams{
		ID:                 id,
		UserID:             userID,
		FileName:           req.FileName,
		APIUsed:            req.APIUsed,
		FileSizeMB:         req.FileSizeMB,
		AudioLengthMinutes: req.AudioLengthMinutes,
		ContextPromptUsed:  req.ContextPromptUsed,
	}
	if req.PendingWorkflow != nil {
		params.PendingWorkflow = &model.PendingWorkflow{
			Prompt:   req.PendingWorkflow.Prompt,
			Title:    req.PendingWorkflow.Title,
			Color:    req.PendingWorkflow.Color,
			OriginID: req.PendingWorkflow.OriginID,
		}
	}

	if err := s.jobs.Create(ctx, params); err != nil {
		s.logger.Error("job creation failed", "job_id", id, "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to create job")
	}
	telemetry.JobsCreated.Inc()

	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load created job")
	}
	return jobToResponse(job), nil
}

// Get fetches a job; admin views skip the ownership check.
func (s *JobServiceImpl) Get(ctx context.Context, id string, userID int64, admin bool) (*dto.JobResponse, error) {
	var job *model.Job
	var err error
	if admin {
		job, err = s.jobs.Get(ctx, id)
	} else {
		job, err = s.jobs.GetForUser(ctx, id, userID)
	}
	if stderrors.Is(err, sqlstore.ErrJobNotFound) {
		return nil, errors.NewNotFoundError("Job")
	}
	if err != nil {
		s.logger.Error("job lookup failed", "job_id", id, "error", err)
		return nil, errors.NewInternalError("Failed to load job")
	}
	return jobToResponse(job), nil
}

// List returns the user's visible finished jobs, newest first.
func (s *JobServiceImpl) List(ctx context.Context, userID int64, page, limit int) (*dto.JobListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	jobs, total, err := s.jobs.ListVisible(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("job list failed", "user_id", userID, "error", err)
		// Degrade reads to an empty page rather than failing the request.
		return &dto.JobListResponse{Jobs: []dto.JobResponse{}, Page: page, Limit: limit}, nil
	}
	return &dto.JobListResponse{
		Jobs:  lo.Map(jobs, func(j model.Job, _ int) dto.JobResponse { return *jobToResponse(&j) }),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// Cancel requests cooperative cancellation. Only pending or processing jobs
// accept it; anything else is a rejected cancellation.
func (s *JobServiceImpl) Cancel(ctx context.Context, id string, userID int64) error {
	ok, err := s.jobs.RequestCancel(ctx, id, userID)
	if err != nil {
		s.logger.Error("cancel request failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to request cancellation")
	}
	if ok {
		return nil
	}
	if _, err := s.jobs.GetForUser(ctx, id, userID); stderrors.Is(err, sqlstore.ErrJobNotFound) {
		return errors.NewNotFoundError("Job")
	}
	return errors.NewConflictError("Job can no longer be cancelled")
}

// Delete hides the job from the user (soft delete).
func (s *JobServiceImpl) Delete(ctx context.Context, id string, userID int64) error {
	ok, err := s.jobs.SoftDelete(ctx, id, userID)
	if err != nil {
		s.logger.Error("soft delete failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to delete job")
	}
	if !ok {
		return errors.NewNotFoundError("Job")
	}
	return nil
}

// Restore undoes a user-initiated delete.
func (s *JobServiceImpl) Restore(ctx context.Context, id string, userID int64) error {
	ok, err := s.jobs.Restore(ctx, id, userID)
	if err != nil {
		s.logger.Error("restore failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to restore job")
	}
	if !ok {
		return errors.NewNotFoundError("Job")
	}
	return nil
}

// AppendProgress adds a worker progress line.
func (s *JobServiceImpl) AppendProgress(ctx context.Context, id, message string) error {
	if err := s.jobs.AppendProgress(ctx, id, message); err != nil {
		s.logger.Error("append progress failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to record progress")
	}
	return nil
}

// Transition applies a worker status write. Cancelled goes through the
// cancelling handshake; a job already finished or errored rejects it.
func (s *JobServiceImpl) Transition(ctx context.Context, id string, status model.JobStatus) error {
	if status == model.JobStatusCancelled {
		ok, err := s.jobs.MarkCancelled(ctx, id)
		if err != nil {
			s.logger.Error("mark cancelled failed", "job_id", id, "error", err)
			return errors.NewInternalError("Failed to update job status")
		}
		if !ok {
			return errors.NewConflictError("Job is not awaiting cancellation")
		}
		telemetry.JobsCancelled.Inc()
		return nil
	}

	err := s.jobs.TransitionStatus(ctx, id, status)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, sqlstore.ErrJobNotFound):
		return errors.NewNotFoundError("Job")
	case stderrors.Is(err, sqlstore.ErrJobTerminal):
		return errors.NewConflictError("Job already reached a terminal status")
	case stderrors.Is(err, sqlstore.ErrJobTerminalTarget):
		return errors.NewValidationError("Validation failed", map[string]string{
			"status": "finished and error are reported via the complete and fail endpoints",
		})
	default:
		s.logger.Error("status transition failed", "job_id", id, "status", status, "error", err)
		return errors.NewInternalError("Failed to update job status")
	}
}

// Complete finalizes a successful transcription and books its usage into the
// ledger. Ledger failures propagate: losing an increment would corrupt the
// quota accounting.
func (s *JobServiceImpl) Complete(ctx context.Context, id string, req *dto.CompleteJobRequest) error {
	job, err := s.jobs.Get(ctx, id)
	if stderrors.Is(err, sqlstore.ErrJobNotFound) {
		return errors.NewNotFoundError("Job")
	}
	if err != nil {
		s.logger.Error("job lookup failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to load job")
	}
	alreadyFinished := job.Status == model.JobStatusFinished

	err = s.jobs.FinalizeSuccess(ctx, id, req.TranscriptionText, req.DetectedLanguage)
	switch {
	case err == nil:
	case stderrors.Is(err, sqlstore.ErrJobTerminal):
		return errors.NewConflictError("Job already reached a terminal status")
	default:
		s.logger.Error("finalize failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to finalize job")
	}
	if alreadyFinished {
		// Retried completion; the ledger was already booked.
		return nil
	}
	telemetry.JobsFinished.Inc()

	cost := 0.0
	if req.Cost != nil {
		cost = *req.Cost
		if err := s.jobs.SetCost(ctx, id, cost); err != nil {
			s.logger.Error("set job cost failed", "job_id", id, "error", err)
		}
	}
	if err := s.usage.RecordTranscriptionUsage(ctx, job.UserID, cost, job.AudioLengthMinutes); err != nil {
		s.logger.Error("ledger increment failed", "job_id", id, "user_id", job.UserID, "error", err)
		return errors.NewInternalError("Failed to record usage")
	}
	telemetry.LedgerIncrements.Inc()
	return nil
}

// Fail records a terminal failure reported by the worker.
func (s *JobServiceImpl) Fail(ctx context.Context, id, message string) error {
	err := s.jobs.SetError(ctx, id, message)
	switch {
	case err == nil:
		telemetry.JobsFailed.Inc()
		return nil
	case stderrors.Is(err, sqlstore.ErrJobNotFound):
		return errors.NewNotFoundError("Job")
	case stderrors.Is(err, sqlstore.ErrJobTerminal):
		return errors.NewConflictError("Job already reached a terminal status")
	default:
		s.logger.Error("set error failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to record job error")
	}
}

// SetTitleStatus drives the title-generation sub-machine. disabled is a
// terminal non-error state used when the owning role forbids the feature.
func (s *JobServiceImpl) SetTitleStatus(ctx context.Context, id string, status model.TitleStatus, generatedTitle *string) error {
	err := s.jobs.SetTitleStatus(ctx, id, status, generatedTitle)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, sqlstore.ErrJobNotFound):
		return errors.NewNotFoundError("Job")
	case stderrors.Is(err, sqlstore.ErrJobTerminal):
		return errors.NewConflictError("Title generation already reached a terminal status")
	default:
		s.logger.Error("set title status failed", "job_id", id, "error", err)
		return errors.NewInternalError("Failed to update title status")
	}
}

func jobToResponse(j *model.Job) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:                 j.ID,
		UserID:             j.UserID,
		FileName:           j.FileName,
		APIUsed:            j.APIUsed,
		FileSizeMB:         j.FileSizeMB,
		AudioLengthMinutes: j.AudioLengthMinutes,
		ContextPromptUsed:  j.ContextPromptUsed,
		CreatedAt:          j.CreatedAt,
		Status:             string(j.Status),
		ErrorMessage:       j.ErrorMessage,
		TranscriptionText:  j.TranscriptionText,
		DetectedLanguage:   j.DetectedLanguage,
		Cost:               j.Cost,
		TitleStatus:        string(j.TitleStatus),
		GeneratedTitle:     j.GeneratedTitle,
		Hidden:             j.Hidden,
		LLMOperationID:     j.LLMOperationID,
		LLMOperationStatus: j.LLMOperationStatus,
		LLMOperationResult: j.LLMOperationResult,
		ProgressLog: lo.Map(j.ProgressLog, func(l model.ProgressLine, _ int) dto.ProgressLineResponse {
			return dto.ProgressLineResponse{RecordedAt: l.RecordedAt, Message: l.Message}
		}),
	}
	if j.HiddenReason != nil {
		reason := string(*j.HiddenReason)
		resp.HiddenReason = &reason
	}
	return resp
}

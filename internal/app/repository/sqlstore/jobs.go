package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// ErrJobNotFound is returned when a job id resolves to no row.
var ErrJobNotFound = errors.New("job not found")

// ErrJobTerminalTarget is returned when a plain status write targets a
// terminal status. Finished, error and cancelled carry extra writes
// (transcript, error message, handshake guard) that a bare UPDATE would
// skip, leaving the row inconsistent.
var ErrJobTerminalTarget = errors.New("terminal status has a dedicated write path")

// ErrJobTerminal is returned when a write would move a job out of a terminal
// status.
var ErrJobTerminal = errors.New("job already in a terminal status")

const jobColumns = `id, user_id, file_name, api_used, file_size_mb, audio_length_minutes,
	context_prompt_used, created_at, status, error_message, transcription_text,
	detected_language, cost, title_status, generated_title, hidden, hidden_date,
	hidden_reason, llm_operation_id, llm_operation_status, llm_operation_result,
	llm_operation_error, llm_operation_ran_at, pending_workflow_prompt,
	pending_workflow_title, pending_workflow_color, pending_workflow_origin_id`

// JobStore implements repository.JobDAO over Store.
type JobStore struct {
	*Store
}

// NewJobStore wraps the shared store.
func NewJobStore(s *Store) *JobStore {
	return &JobStore{Store: s}
}

var _ repository.JobDAO = (*JobStore)(nil)

// Create inserts a job at pending together with its first progress line.
// A duplicate id or unknown user surfaces as the driver's constraint error.
func (s *JobStore) Create(ctx context.Context, p repository.CreateJobParams) error {
	if p.ID == "" {
		return fmt.Errorf("create job: empty id")
	}
	now := s.now()

	var pwPrompt, pwTitle, pwColor sql.NullString
	var pwOrigin sql.NullInt64
	if p.PendingWorkflow != nil {
		pwPrompt = sql.NullString{String: p.PendingWorkflow.Prompt, Valid: true}
		pwTitle = sql.NullString{String: p.PendingWorkflow.Title, Valid: true}
		pwColor = sql.NullString{String: p.PendingWorkflow.Color, Valid: true}
		pwOrigin = sql.NullInt64{Int64: p.PendingWorkflow.OriginID, Valid: true}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		insert := fmt.Sprintf(
			`INSERT INTO transcription_jobs (
				id, user_id, file_name, api_used, file_size_mb, audio_length_minutes,
				context_prompt_used, created_at, status, title_status,
				pending_workflow_prompt, pending_workflow_title,
				pending_workflow_color, pending_workflow_origin_id
			) VALUES (%s)`,
			s.placeholders(1, 14),
		)
		if _, err := tx.ExecContext(ctx, insert,
			p.ID, p.UserID, p.FileName, p.APIUsed, p.FileSizeMB, p.AudioLengthMinutes,
			p.ContextPromptUsed, now, string(model.JobStatusPending), string(model.TitleStatusPending),
			pwPrompt, pwTitle, pwColor, pwOrigin,
		); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		return s.appendProgressTx(ctx, tx, p.ID, now, "Job created, waiting for transcription")
	})
}

func (s *JobStore) appendProgressTx(ctx context.Context, tx *sql.Tx, jobID string, at time.Time, message string) error {
	query := fmt.Sprintf(
		`INSERT INTO job_progress (job_id, recorded_at, message) VALUES (%s)`,
		s.placeholders(1, 3),
	)
	if _, err := tx.ExecContext(ctx, query, jobID, at, message); err != nil {
		return fmt.Errorf("append progress: %w", err)
	}
	return nil
}

// AppendProgress adds one timestamped line to the job's progress log. The
// log is a child table, so appends never rewrite prior entries.
func (s *JobStore) AppendProgress(ctx context.Context, id, message string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.appendProgressTx(ctx, tx, id, s.now(), message)
	})
}

// TransitionStatus writes a validated non-terminal status. Repeating the
// current status is accepted; overwriting a different terminal status is
// not. Terminal targets are rejected: finished goes through FinalizeSuccess,
// error through SetError, cancelled through MarkCancelled.
func (s *JobStore) TransitionStatus(ctx context.Context, id string, status model.JobStatus) error {
	if !model.ValidJobStatus(status) {
		return fmt.Errorf("invalid job status %q", status)
	}
	if status.Terminal() {
		return ErrJobTerminalTarget
	}
	query := fmt.Sprintf(
		`UPDATE transcription_jobs SET status = %s
		 WHERE id = %s AND (status = %s OR status NOT IN (%s, %s, %s))`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
	)
	res, err := s.db.ExecContext(ctx, query,
		string(status), id, string(status),
		string(model.JobStatusFinished), string(model.JobStatusError), string(model.JobStatusCancelled),
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n == 0 {
		if _, err := s.currentStatus(ctx, id); err != nil {
			return err
		}
		return ErrJobTerminal
	}
	return nil
}

func (s *JobStore) currentStatus(ctx context.Context, id string) (model.JobStatus, error) {
	var status string
	query := fmt.Sprintf(`SELECT status FROM transcription_jobs WHERE id = %s`, s.ph(1))
	err := s.db.QueryRowContext(ctx, query, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query job status: %w", err)
	}
	return model.JobStatus(status), nil
}

// FinalizeSuccess marks the job finished, stores the transcript and appends a
// completion line. Calling it again on an already finished job is a no-op, so
// retried pipelines do not duplicate the log. If the finishing write fails,
// the job is downgraded to error instead of staying stuck in processing.
func (s *JobStore) FinalizeSuccess(ctx context.Context, id, transcriptionText, detectedLanguage string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		status, err := s.statusForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		switch status {
		case model.JobStatusFinished:
			return nil
		case model.JobStatusError, model.JobStatusCancelled:
			return ErrJobTerminal
		}
		now := s.now()
		update := fmt.Sprintf(
			`UPDATE transcription_jobs
			 SET status = %s, transcription_text = %s, detected_language = %s, error_message = NULL
			 WHERE id = %s`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4),
		)
		if _, err := tx.ExecContext(ctx, update,
			string(model.JobStatusFinished), transcriptionText, detectedLanguage, id,
		); err != nil {
			return fmt.Errorf("finalize job: %w", err)
		}
		return s.appendProgressTx(ctx, tx, id, now, "Transcription finished")
	})
	if err == nil || errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrJobTerminal) {
		return err
	}

	// Fallback: never leave the job stuck in processing because of one failed
	// write. Record the finalization failure as the job's error instead.
	s.logger.Error("finalize failed, downgrading job to error", "job_id", id, "error", err)
	if fbErr := s.SetError(ctx, id, fmt.Sprintf("finalization failed: %v", err)); fbErr != nil {
		s.logger.Error("finalize fallback failed", "job_id", id, "error", fbErr)
	}
	return err
}

// SetError marks the job errored and appends an "ERROR: ..." progress line.
func (s *JobStore) SetError(ctx context.Context, id, message string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		status, err := s.statusForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !status.CanTransition(model.JobStatusError) {
			return ErrJobTerminal
		}
		update := fmt.Sprintf(
			`UPDATE transcription_jobs
			 SET status = %s, error_message = %s, transcription_text = NULL
			 WHERE id = %s`,
			s.ph(1), s.ph(2), s.ph(3),
		)
		if _, err := tx.ExecContext(ctx, update, string(model.JobStatusError), message, id); err != nil {
			return fmt.Errorf("set job error: %w", err)
		}
		if status == model.JobStatusError {
			// Repeated write with a fresh message; the first ERROR line is
			// already in the log.
			return nil
		}
		return s.appendProgressTx(ctx, tx, id, s.now(), "ERROR: "+message)
	})
}

func (s *JobStore) statusForUpdate(ctx context.Context, tx *sql.Tx, id string) (model.JobStatus, error) {
	query := fmt.Sprintf(`SELECT status FROM transcription_jobs WHERE id = %s`, s.ph(1))
	if s.driver == "postgres" {
		query += " FOR UPDATE"
	}
	var status string
	err := tx.QueryRowContext(ctx, query, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query job status: %w", err)
	}
	return model.JobStatus(status), nil
}

// SetCost stores the job's cost once known.
func (s *JobStore) SetCost(ctx context.Context, id string, cost float64) error {
	query := fmt.Sprintf(`UPDATE transcription_jobs SET cost = %s WHERE id = %s`, s.ph(1), s.ph(2))
	res, err := s.db.ExecContext(ctx, query, cost, id)
	if err != nil {
		return fmt.Errorf("set job cost: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// RequestCancel flips a cancellable job to cancelling. Returns false when
// the job is missing, not owned by userID, or already past the point of
// cancellation.
func (s *JobStore) RequestCancel(ctx context.Context, id string, userID int64) (bool, error) {
	args := []any{string(model.JobStatusCancelling), id, userID}
	for _, st := range model.JobStatuses() {
		if st.Cancellable() {
			args = append(args, string(st))
		}
	}
	var flipped bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(
			`UPDATE transcription_jobs SET status = %s
			 WHERE id = %s AND user_id = %s AND status IN (%s)`,
			s.ph(1), s.ph(2), s.ph(3), s.placeholders(4, len(args)-3),
		)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("request cancel: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("request cancel: %w", err)
		}
		if n == 0 {
			return nil
		}
		flipped = true
		return s.appendProgressTx(ctx, tx, id, s.now(), "Cancellation requested")
	})
	return flipped, err
}

// MarkCancelled completes the cancellation handshake from the worker side.
// Only rows still in cancelling flip; a terminal write that raced past the
// request wins.
func (s *JobStore) MarkCancelled(ctx context.Context, id string) (bool, error) {
	var flipped bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(
			`UPDATE transcription_jobs SET status = %s WHERE id = %s AND status = %s`,
			s.ph(1), s.ph(2), s.ph(3),
		)
		res, err := tx.ExecContext(ctx, query,
			string(model.JobStatusCancelled), id, string(model.JobStatusCancelling),
		)
		if err != nil {
			return fmt.Errorf("mark cancelled: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark cancelled: %w", err)
		}
		if n == 0 {
			return nil
		}
		flipped = true
		return s.appendProgressTx(ctx, tx, id, s.now(), "Job cancelled")
	})
	return flipped, err
}

// SetTitleStatus writes the title-generation sub-state. The sub-machine is
// terminal on its own: success, failed and disabled are never overwritten.
func (s *JobStore) SetTitleStatus(ctx context.Context, id string, status model.TitleStatus, generatedTitle *string) error {
	if !model.ValidTitleStatus(status) {
		return fmt.Errorf("invalid title status %q", status)
	}
	var title sql.NullString
	if generatedTitle != nil {
		title = sql.NullString{String: *generatedTitle, Valid: true}
	}
	query := fmt.Sprintf(
		`UPDATE transcription_jobs
		 SET title_status = %s, generated_title = COALESCE(%s, generated_title)
		 WHERE id = %s AND (title_status = %s OR title_status NOT IN (%s, %s, %s))`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7),
	)
	res, err := s.db.ExecContext(ctx, query,
		string(status), title, id, string(status),
		string(model.TitleStatusSuccess), string(model.TitleStatusFailed), string(model.TitleStatusDisabled),
	)
	if err != nil {
		return fmt.Errorf("set title status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set title status: %w", err)
	}
	if n == 0 {
		if _, err := s.currentStatus(ctx, id); err != nil {
			return err
		}
		return ErrJobTerminal
	}
	return nil
}

// AttachOperation mirrors a workflow operation's state into the job row and
// clears the pending-workflow staging fields it consumed.
func (s *JobStore) AttachOperation(ctx context.Context, jobID string, op *model.Operation) error {
	var ranAt sql.NullTime
	if op.CompletedAt != nil {
		ranAt = sql.NullTime{Time: *op.CompletedAt, Valid: true}
	}
	query := fmt.Sprintf(
		`UPDATE transcription_jobs
		 SET llm_operation_id = %s, llm_operation_status = %s, llm_operation_result = %s,
		     llm_operation_error = %s, llm_operation_ran_at = %s,
		     pending_workflow_prompt = NULL, pending_workflow_title = NULL,
		     pending_workflow_color = NULL, pending_workflow_origin_id = NULL
		 WHERE id = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
	)
	res, err := s.db.ExecContext(ctx, query,
		op.ID, string(op.Status), nullString(op.Result), nullString(op.Error), ranAt, jobID,
	)
	if err != nil {
		return fmt.Errorf("attach operation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// SoftDelete hides a visible job owned by userID. Any mismatch collapses to
// false.
func (s *JobStore) SoftDelete(ctx context.Context, id string, userID int64) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE transcription_jobs
		 SET hidden = %s, hidden_date = %s, hidden_reason = %s
		 WHERE id = %s AND user_id = %s AND hidden = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
	)
	res, err := s.db.ExecContext(ctx, query,
		true, s.now(), string(model.HiddenReasonUserDeleted), id, userID, false,
	)
	if err != nil {
		return false, fmt.Errorf("soft delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete job: %w", err)
	}
	return n > 0, nil
}

// Restore undoes a user-initiated soft delete. Retention-hidden rows stay
// hidden; only the retention engine decides their fate.
func (s *JobStore) Restore(ctx context.Context, id string, userID int64) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE transcription_jobs
		 SET hidden = %s, hidden_date = NULL, hidden_reason = NULL
		 WHERE id = %s AND user_id = %s AND hidden = %s AND hidden_reason = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5),
	)
	res, err := s.db.ExecContext(ctx, query,
		false, id, userID, true, string(model.HiddenReasonUserDeleted),
	)
	if err != nil {
		return false, fmt.Errorf("restore job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("restore job: %w", err)
	}
	return n > 0, nil
}

// Get fetches a job without an ownership check (admin views).
func (s *JobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transcription_jobs WHERE id = %s`, jobColumns, s.ph(1),
	)
	return s.getJob(ctx, query, id)
}

// GetForUser fetches a job only if userID owns it.
func (s *JobStore) GetForUser(ctx context.Context, id string, userID int64) (*model.Job, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transcription_jobs WHERE id = %s AND user_id = %s`,
		jobColumns, s.ph(1), s.ph(2),
	)
	return s.getJob(ctx, query, id, userID)
}

func (s *JobStore) getJob(ctx context.Context, query string, args ...interface{}) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadProgress(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) loadProgress(ctx context.Context, job *model.Job) error {
	query := fmt.Sprintf(
		`SELECT recorded_at, message FROM job_progress WHERE job_id = %s ORDER BY id`,
		s.ph(1),
	)
	rows, err := s.db.QueryContext(ctx, query, job.ID)
	if err != nil {
		return fmt.Errorf("query progress log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.ProgressLine
		if err := rows.Scan(&line.RecordedAt, &line.Message); err != nil {
			return fmt.Errorf("scan progress line: %w", err)
		}
		job.ProgressLog = append(job.ProgressLog, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("progress rows: %w", err)
	}
	return nil
}

// ListVisible returns the user's visible finished jobs, newest first, plus
// the total count for pagination.
func (s *JobStore) ListVisible(ctx context.Context, userID int64, page, limit int) ([]model.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM transcription_jobs
		 WHERE user_id = %s AND hidden = %s AND status = %s`,
		s.ph(1), s.ph(2), s.ph(3),
	)
	if err := s.db.QueryRowContext(ctx, countQuery,
		userID, false, string(model.JobStatusFinished),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visible jobs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM transcription_jobs
		 WHERE user_id = %s AND hidden = %s AND status = %s
		 ORDER BY created_at DESC
		 LIMIT %s OFFSET %s`,
		jobColumns, s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5),
	)
	rows, err := s.db.QueryContext(ctx, query,
		userID, false, string(model.JobStatusFinished), limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query visible jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("job rows: %w", err)
	}
	return jobs, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJob is the single deserialization boundary for job rows. It fails
// loudly when a row violates the entity's invariants.
func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j            model.Job
		status       string
		titleStatus  string
		errMsg       sql.NullString
		text         sql.NullString
		lang         sql.NullString
		cost         sql.NullFloat64
		genTitle     sql.NullString
		hiddenDate   sql.NullTime
		hiddenReason sql.NullString
		opID         sql.NullInt64
		opStatus     sql.NullString
		opResult     sql.NullString
		opError      sql.NullString
		opRanAt      sql.NullTime
		pwPrompt     sql.NullString
		pwTitle      sql.NullString
		pwColor      sql.NullString
		pwOrigin     sql.NullInt64
	)

	err := row.Scan(
		&j.ID, &j.UserID, &j.FileName, &j.APIUsed, &j.FileSizeMB, &j.AudioLengthMinutes,
		&j.ContextPromptUsed, &j.CreatedAt, &status, &errMsg, &text,
		&lang, &cost, &titleStatus, &genTitle, &j.Hidden, &hiddenDate,
		&hiddenReason, &opID, &opStatus, &opResult,
		&opError, &opRanAt, &pwPrompt,
		&pwTitle, &pwColor, &pwOrigin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	j.Status = model.JobStatus(status)
	j.TitleStatus = model.TitleStatus(titleStatus)
	j.ErrorMessage = stringPtr(errMsg)
	j.TranscriptionText = stringPtr(text)
	j.DetectedLanguage = stringPtr(lang)
	j.GeneratedTitle = stringPtr(genTitle)
	if cost.Valid {
		j.Cost = &cost.Float64
	}
	if hiddenDate.Valid {
		j.HiddenDate = &hiddenDate.Time
	}
	if hiddenReason.Valid {
		reason := model.HiddenReason(hiddenReason.String)
		j.HiddenReason = &reason
	}
	if opID.Valid {
		j.LLMOperationID = &opID.Int64
	}
	j.LLMOperationStatus = stringPtr(opStatus)
	j.LLMOperationResult = stringPtr(opResult)
	j.LLMOperationError = stringPtr(opError)
	if opRanAt.Valid {
		j.LLMOperationRanAt = &opRanAt.Time
	}
	if pwPrompt.Valid {
		j.PendingWorkflow = &model.PendingWorkflow{
			Prompt:   pwPrompt.String,
			Title:    pwTitle.String,
			Color:    pwColor.String,
			OriginID: pwOrigin.Int64,
		}
	}

	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job row: %w", err)
	}
	return &j, nil
}

func stringPtr(v sql.NullString) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// ErrOperationNotFound is returned when an operation id resolves to no row.
var ErrOperationNotFound = errors.New("operation not found")

const operationColumns = `id, user_id, job_id, provider, operation_type, input_text,
	prompt_id, status, result, error, cost, created_at, completed_at`

// OperationStore implements repository.OperationDAO over Store.
type OperationStore struct {
	*Store
	providers []string
}

// NewOperationStore wraps the shared store. providers is the list of
// configured provider name prefixes accepted at creation.
func NewOperationStore(s *Store, providers []string) *OperationStore {
	return &OperationStore{Store: s, providers: providers}
}

var _ repository.OperationDAO = (*OperationStore)(nil)

// ErrUnknownProvider rejects operation creation for unconfigured providers.
var ErrUnknownProvider = errors.New("unknown provider")

func (s *OperationStore) providerAllowed(provider string) bool {
	for _, p := range s.providers {
		if len(provider) >= len(p) && provider[:len(p)] == p {
			return true
		}
	}
	return false
}

// Create validates and inserts a pending operation. Validation failures
// persist nothing.
func (s *OperationStore) Create(ctx context.Context, p repository.CreateOperationParams) (int64, error) {
	if !s.providerAllowed(p.Provider) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, p.Provider)
	}
	if !model.ValidOperationType(p.OperationType) {
		return 0, fmt.Errorf("invalid operation type %q", p.OperationType)
	}

	now := s.now()
	var jobID sql.NullString
	if p.JobID != nil {
		jobID = sql.NullString{String: *p.JobID, Valid: true}
	}
	var promptID sql.NullInt64
	if p.PromptID != nil {
		promptID = sql.NullInt64{Int64: *p.PromptID, Valid: true}
	}

	if s.driver == "postgres" {
		query := fmt.Sprintf(
			`INSERT INTO llm_operations
				(user_id, job_id, provider, operation_type, input_text, prompt_id, status, created_at)
			 VALUES (%s) RETURNING id`,
			s.placeholders(1, 8),
		)
		var id int64
		err := s.db.QueryRowContext(ctx, query,
			p.UserID, jobID, p.Provider, string(p.OperationType), p.InputText,
			promptID, string(model.OperationStatusPending), now,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert operation: %w", err)
		}
		return id, nil
	}

	query := fmt.Sprintf(
		`INSERT INTO llm_operations
			(user_id, job_id, provider, operation_type, input_text, prompt_id, status, created_at)
		 VALUES (%s)`,
		s.placeholders(1, 8),
	)
	res, err := s.db.ExecContext(ctx, query,
		p.UserID, jobID, p.Provider, string(p.OperationType), p.InputText,
		promptID, string(model.OperationStatusPending), now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	return id, nil
}

// Transition writes the operation's status. Terminal writes set completed_at
// and exactly one of result/error; moving back to processing clears a stale
// completed_at. Returns false when the operation does not exist.
func (s *OperationStore) Transition(ctx context.Context, id int64, status model.OperationStatus, result, errText *string) (bool, error) {
	if !model.ValidOperationStatus(status) {
		return false, fmt.Errorf("invalid operation status %q", status)
	}

	var query string
	var args []interface{}
	switch status {
	case model.OperationStatusFinished:
		query = fmt.Sprintf(
			`UPDATE llm_operations
			 SET status = %s, result = %s, error = NULL, completed_at = %s
			 WHERE id = %s`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4),
		)
		args = []interface{}{string(status), nullString(result), s.now(), id}
	case model.OperationStatusError:
		query = fmt.Sprintf(
			`UPDATE llm_operations
			 SET status = %s, error = %s, result = NULL, completed_at = %s
			 WHERE id = %s`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4),
		)
		args = []interface{}{string(status), nullString(errText), s.now(), id}
	default:
		query = fmt.Sprintf(
			`UPDATE llm_operations
			 SET status = %s, completed_at = NULL
			 WHERE id = %s`,
			s.ph(1), s.ph(2),
		)
		args = []interface{}{string(status), id}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("operation transition failed", "operation_id", id, "status", status, "error", err)
		return false, fmt.Errorf("transition operation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition operation: %w", err)
	}
	return n > 0, nil
}

// UpdateResult is the ownership-checked edit of a completed operation's
// result text. Writing the value already stored is a no-op success, so
// retried client requests stay idempotent and completed_at is untouched.
func (s *OperationStore) UpdateResult(ctx context.Context, id, userID int64, result string) (bool, error) {
	var existing sql.NullString
	query := fmt.Sprintf(
		`SELECT result FROM llm_operations WHERE id = %s AND user_id = %s`,
		s.ph(1), s.ph(2),
	)
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query operation result: %w", err)
	}
	if existing.Valid && existing.String == result {
		return true, nil
	}

	update := fmt.Sprintf(
		`UPDATE llm_operations SET result = %s WHERE id = %s AND user_id = %s`,
		s.ph(1), s.ph(2), s.ph(3),
	)
	res, err := s.db.ExecContext(ctx, update, result, id, userID)
	if err != nil {
		return false, fmt.Errorf("update operation result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update operation result: %w", err)
	}
	return n > 0, nil
}

// SetCost stores the operation's cost once known.
func (s *OperationStore) SetCost(ctx context.Context, id int64, cost float64) (bool, error) {
	query := fmt.Sprintf(`UPDATE llm_operations SET cost = %s WHERE id = %s`, s.ph(1), s.ph(2))
	res, err := s.db.ExecContext(ctx, query, cost, id)
	if err != nil {
		return false, fmt.Errorf("set operation cost: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set operation cost: %w", err)
	}
	return n > 0, nil
}

// Get fetches an operation without an ownership check.
func (s *OperationStore) Get(ctx context.Context, id int64) (*model.Operation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM llm_operations WHERE id = %s`, operationColumns, s.ph(1),
	)
	return scanOperationRow(s.db.QueryRowContext(ctx, query, id))
}

// GetForUser fetches an operation only if userID owns it.
func (s *OperationStore) GetForUser(ctx context.Context, id, userID int64) (*model.Operation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM llm_operations WHERE id = %s AND user_id = %s`,
		operationColumns, s.ph(1), s.ph(2),
	)
	return scanOperationRow(s.db.QueryRowContext(ctx, query, id, userID))
}

func scanOperationRow(row *sql.Row) (*model.Operation, error) {
	var (
		o           model.Operation
		jobID       sql.NullString
		opType      string
		promptID    sql.NullInt64
		status      string
		result      sql.NullString
		errText     sql.NullString
		cost        sql.NullFloat64
		completedAt sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.UserID, &jobID, &o.Provider, &opType, &o.InputText,
		&promptID, &status, &result, &errText, &cost, &o.CreatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan operation: %w", err)
	}

	o.OperationType = model.OperationType(opType)
	o.Status = model.OperationStatus(status)
	o.Result = stringPtr(result)
	o.Error = stringPtr(errText)
	if jobID.Valid {
		o.JobID = &jobID.String
	}
	if promptID.Valid {
		o.PromptID = &promptID.Int64
	}
	if cost.Valid {
		o.Cost = &cost.Float64
	}
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid operation row: %w", err)
	}
	return &o, nil
}

package sqlstore

import "fmt"

// The users and role tables belong to the account/role subsystem; the DDL
// here carries just enough of them for foreign keys and the read-only limit
// lookups to work in a fresh database.

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	role_id BIGINT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS role_limits (
	role_id BIGINT PRIMARY KEY,
	daily_cost NUMERIC NOT NULL DEFAULT 0,
	weekly_cost NUMERIC NOT NULL DEFAULT 0,
	monthly_cost NUMERIC NOT NULL DEFAULT 0,
	daily_minutes NUMERIC NOT NULL DEFAULT 0,
	weekly_minutes NUMERIC NOT NULL DEFAULT 0,
	monthly_minutes NUMERIC NOT NULL DEFAULT 0,
	daily_workflows BIGINT NOT NULL DEFAULT 0,
	weekly_workflows BIGINT NOT NULL DEFAULT 0,
	monthly_workflows BIGINT NOT NULL DEFAULT 0,
	max_history_items BIGINT NOT NULL DEFAULT 0,
	history_retention_days BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transcription_jobs (
	id TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	file_name TEXT NOT NULL,
	api_used TEXT NOT NULL,
	file_size_mb DOUBLE PRECISION NOT NULL DEFAULT 0,
	audio_length_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
	context_prompt_used BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	error_message TEXT,
	transcription_text TEXT,
	detected_language TEXT,
	cost NUMERIC,
	title_status TEXT NOT NULL DEFAULT 'pending',
	generated_title TEXT,
	hidden BOOLEAN NOT NULL DEFAULT FALSE,
	hidden_date TIMESTAMPTZ,
	hidden_reason TEXT,
	llm_operation_id BIGINT,
	llm_operation_status TEXT,
	llm_operation_result TEXT,
	llm_operation_error TEXT,
	llm_operation_ran_at TIMESTAMPTZ,
	pending_workflow_prompt TEXT,
	pending_workflow_title TEXT,
	pending_workflow_color TEXT,
	pending_workflow_origin_id BIGINT
);
CREATE INDEX IF NOT EXISTS idx_jobs_user_visible
	ON transcription_jobs (user_id, created_at DESC) WHERE hidden = FALSE;

CREATE TABLE IF NOT EXISTS job_progress (
	id BIGSERIAL PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES transcription_jobs(id) ON DELETE CASCADE,
	recorded_at TIMESTAMPTZ NOT NULL,
	message TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_progress_job ON job_progress (job_id, id);

CREATE TABLE IF NOT EXISTS llm_operations (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	job_id TEXT REFERENCES transcription_jobs(id) ON DELETE SET NULL,
	provider TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	input_text TEXT NOT NULL,
	prompt_id BIGINT,
	status TEXT NOT NULL DEFAULT 'pending',
	result TEXT,
	error TEXT,
	cost NUMERIC,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_llm_operations_user ON llm_operations (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS usage_ledger (
	user_id BIGINT NOT NULL REFERENCES users(id),
	usage_date DATE NOT NULL,
	cost NUMERIC NOT NULL DEFAULT 0,
	minutes NUMERIC NOT NULL DEFAULT 0,
	workflows BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, usage_date)
);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role_id INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS role_limits (
	role_id INTEGER PRIMARY KEY,
	daily_cost REAL NOT NULL DEFAULT 0,
	weekly_cost REAL NOT NULL DEFAULT 0,
	monthly_cost REAL NOT NULL DEFAULT 0,
	daily_minutes REAL NOT NULL DEFAULT 0,
	weekly_minutes REAL NOT NULL DEFAULT 0,
	monthly_minutes REAL NOT NULL DEFAULT 0,
	daily_workflows INTEGER NOT NULL DEFAULT 0,
	weekly_workflows INTEGER NOT NULL DEFAULT 0,
	monthly_workflows INTEGER NOT NULL DEFAULT 0,
	max_history_items INTEGER NOT NULL DEFAULT 0,
	history_retention_days INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transcription_jobs (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	file_name TEXT NOT NULL,
	api_used TEXT NOT NULL,
	file_size_mb REAL NOT NULL DEFAULT 0,
	audio_length_minutes REAL NOT NULL DEFAULT 0,
	context_prompt_used BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	error_message TEXT,
	transcription_text TEXT,
	detected_language TEXT,
	cost REAL,
	title_status TEXT NOT NULL DEFAULT 'pending',
	generated_title TEXT,
	hidden BOOLEAN NOT NULL DEFAULT 0,
	hidden_date TIMESTAMP,
	hidden_reason TEXT,
	llm_operation_id INTEGER,
	llm_operation_status TEXT,
	llm_operation_result TEXT,
	llm_operation_error TEXT,
	llm_operation_ran_at TIMESTAMP,
	pending_workflow_prompt TEXT,
	pending_workflow_title TEXT,
	pending_workflow_color TEXT,
	pending_workflow_origin_id INTEGER
);
CREATE INDEX IF NOT EXISTS idx_jobs_user_created ON transcription_jobs (user_id, created_at);

CREATE TABLE IF NOT EXISTS job_progress (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL REFERENCES transcription_jobs(id) ON DELETE CASCADE,
	recorded_at TIMESTAMP NOT NULL,
	message TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_progress_job ON job_progress (job_id, id);

CREATE TABLE IF NOT EXISTS llm_operations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	job_id TEXT REFERENCES transcription_jobs(id) ON DELETE SET NULL,
	provider TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	input_text TEXT NOT NULL,
	prompt_id INTEGER,
	status TEXT NOT NULL DEFAULT 'pending',
	result TEXT,
	error TEXT,
	cost REAL,
	created_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_llm_operations_user ON llm_operations (user_id, created_at);

CREATE TABLE IF NOT EXISTS usage_ledger (
	user_id INTEGER NOT NULL REFERENCES users(id),
	usage_date TEXT NOT NULL,
	cost REAL NOT NULL DEFAULT 0,
	minutes REAL NOT NULL DEFAULT 0,
	workflows INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, usage_date)
);
`

// InitSchema creates all tables for the store's driver if they do not exist.
func (s *Store) InitSchema() error {
	ddl := schemaSQLite
	if s.driver == "postgres" {
		ddl = schemaPostgres
	}
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

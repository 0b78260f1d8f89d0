package testutil

import (
	"time"

	"scribed/internal/app/model"
)

// FixtureTime is the frozen clock shared by tests that need deterministic
// timestamps. A Wednesday, so weekly-window math is non-trivial.
var FixtureTime = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

// PendingJob returns a freshly created job owned by userID.
func PendingJob(id string, userID int64) *model.Job {
	return &model.Job{
		ID:                 id,
		UserID:             userID,
		FileName:           "interview.mp3",
		APIUsed:            "whisper-1",
		FileSizeMB:         4.2,
		AudioLengthMinutes: 12.5,
		CreatedAt:          FixtureTime,
		Status:             model.JobStatusPending,
		TitleStatus:        model.TitleStatusPending,
		ProgressLog: []model.ProgressLine{
			{RecordedAt: FixtureTime, Message: "Job created, waiting for transcription"},
		},
	}
}

// FinishedJob returns a job that completed successfully.
func FinishedJob(id string, userID int64) *model.Job {
	j := PendingJob(id, userID)
	j.Status = model.JobStatusFinished
	text := "hello world"
	lang := "en"
	j.TranscriptionText = &text
	j.DetectedLanguage = &lang
	return j
}

// PendingOperation returns a freshly created workflow operation.
func PendingOperation(id, userID int64) *model.Operation {
	return &model.Operation{
		ID:            id,
		UserID:        userID,
		Provider:      "openai/gpt-4o",
		OperationType: model.OperationTypeWorkflow,
		InputText:     "summarize this transcript",
		Status:        model.OperationStatusPending,
		CreatedAt:     FixtureTime,
	}
}

// UnlimitedRole returns a limit snapshot with every ceiling disabled.
func UnlimitedRole() *model.RoleLimits {
	return &model.RoleLimits{RoleID: 1}
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

// F64Ptr returns a pointer to f.
func F64Ptr(f float64) *float64 { return &f }

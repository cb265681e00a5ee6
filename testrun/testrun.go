package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTestRunNotFound is returned when a test run is not found.
	ErrTestRunNotFound = errors.New("test run not found")

	// ErrInvalidProvider is returned when the provider is not set.
	ErrInvalidProvider = errors.New("provider is required")

	// ErrInvalidTargetURL is returned when the target url is not set.
	ErrInvalidTargetURL = errors.New("target_url is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrTestRunNotRunning is returned when trying to complete a test run that's not running.
	ErrTestRunNotRunning = errors.New("test run is not running")

	// ErrTestRunAlreadyStarted is returned when trying to start an already started test run.
	ErrTestRunAlreadyStarted = errors.New("test run already started")
)

// Status represents the status of a test run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	// StatusGenerated marks a run that produced artifacts without executing
	// them.
	StatusGenerated Status = "generated"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed, StatusErrored, StatusGenerated:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a final status (can't be changed).
func (s Status) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusErrored || s == StatusGenerated
}

// TestRun is the persisted history entry for one pipeline plus execution run.
type TestRun struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Provider    string     `json:"provider" gorm:"type:varchar(32);not null;index:idx_provider"`
	Model       string     `json:"model" gorm:"type:varchar(128)"`
	TargetURL   string     `json:"target_url" gorm:"type:varchar(2048);not null"`
	ScreenName  string     `json:"screen_name" gorm:"type:varchar(255);index:idx_screen_name"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_status"`
	Total       int        `json:"total" gorm:"not null;default:0"`
	Passed      int        `json:"passed" gorm:"not null;default:0"`
	Failed      int        `json:"failed" gorm:"not null;default:0"`
	ScriptPath  string     `json:"script_path,omitempty" gorm:"type:varchar(512)"`
	ReportPath  string     `json:"report_path,omitempty" gorm:"type:varchar(512)"`
	Notes       string     `json:"notes" gorm:"type:text"`
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"index:idx_started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new test run
func (tr *TestRun) BeforeCreate(tx *gorm.DB) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	return nil
}

// Validate checks if the test run has valid required fields.
func (tr *TestRun) Validate() error {
	if tr.Provider == "" {
		return ErrInvalidProvider
	}
	if tr.TargetURL == "" {
		return ErrInvalidTargetURL
	}
	if !tr.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Start sets the started_at timestamp and changes status to running.
func (tr *TestRun) Start() error {
	if tr.StartedAt != nil {
		return ErrTestRunAlreadyStarted
	}
	now := time.Now()
	tr.StartedAt = &now
	tr.Status = StatusRunning
	return nil
}

// Complete copies the execution counters, derives the final status and sets
// completed_at. A nil result marks the run errored.
func (tr *TestRun) Complete(result *ExecutionResult, notes string) error {
	if tr.Status != StatusRunning {
		return ErrTestRunNotRunning
	}

	if result != nil {
		tr.Total = result.Total
		tr.Passed = result.Passed
		tr.Failed = result.Failed
		tr.Status = result.Status()
	} else {
		tr.Status = StatusErrored
	}

	now := time.Now()
	tr.CompletedAt = &now
	if notes != "" {
		tr.Notes = notes
	}
	return nil
}

package testrun

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for test run persistence operations.
type Store interface {
	// Create creates a new test run in the store.
	Create(ctx context.Context, testRun *TestRun) error

	// GetByID retrieves a test run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error)

	// Update updates a test run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// List retrieves a page of test runs, newest first. An empty screenName
	// matches every run.
	List(ctx context.Context, screenName string, limit, offset int) ([]*TestRun, error)

	// Start marks a test run as started.
	Start(ctx context.Context, id uuid.UUID) error

	// Complete records the execution outcome and final status.
	Complete(ctx context.Context, id uuid.UUID, result *ExecutionResult, notes string) error
}

// UpdateSetter is a function that updates a test run field.
type UpdateSetter func(*TestRun) error

package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

// MySQLStore implements the Store interface using GORM. It runs against
// MySQL in production and SQLite in tests.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed test run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new test run in the database.
func (s *MySQLStore) Create(ctx context.Context, testRun *TestRun) error {
	if testRun.Status == "" {
		testRun.Status = StatusPending
	}

	if err := testRun.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to create test run", map[string]interface{}{
			"error":    err.Error(),
			"provider": testRun.Provider,
		})
		return err
	}

	s.logger.Info(ctx, "test run created", map[string]interface{}{
		"test_run_id": testRun.ID,
		"provider":    testRun.Provider,
	})

	return nil
}

// GetByID retrieves a test run by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error) {
	var testRun TestRun
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&testRun).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestRunNotFound
		}
		s.logger.Error(ctx, "failed to get test run by ID", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id,
		})
		return nil, err
	}

	return &testRun, nil
}

// Update updates a test run with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(testRun); err != nil {
			return err
		}
	}

	return s.save(ctx, testRun, "test run updated")
}

// List retrieves a page of test runs, newest first.
func (s *MySQLStore) List(ctx context.Context, screenName string, limit, offset int) ([]*TestRun, error) {
	query := s.db.WithContext(ctx)
	if screenName != "" {
		query = query.Where("screen_name = ?", screenName)
	}

	var testRuns []*TestRun
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&testRuns).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list test runs", map[string]interface{}{
			"error":       err.Error(),
			"screen_name": screenName,
			"limit":       limit,
			"offset":      offset,
		})
		return nil, err
	}

	return testRuns, nil
}

// Start marks a test run as started.
func (s *MySQLStore) Start(ctx context.Context, id uuid.UUID) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := testRun.Start(); err != nil {
		return err
	}

	return s.save(ctx, testRun, "test run started")
}

// Complete records the execution outcome and final status.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, result *ExecutionResult, notes string) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := testRun.Complete(result, notes); err != nil {
		return err
	}

	return s.save(ctx, testRun, "test run completed")
}

func (s *MySQLStore) save(ctx context.Context, testRun *TestRun, msg string) error {
	if err := s.db.WithContext(ctx).Save(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to save test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRun.ID,
		})
		return err
	}

	s.logger.Info(ctx, msg, map[string]interface{}{
		"test_run_id": testRun.ID,
		"status":      testRun.Status,
	})
	return nil
}

package scriptgen

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

// MySQLStore implements the Store interface using GORM.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed script record store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new script record in the database.
func (s *MySQLStore) Create(ctx context.Context, record *ScriptRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	record.CaseCount = len(record.CaseIDs)

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrScriptAlreadyExists
		}
		s.logger.Error(ctx, "failed to create script record", map[string]interface{}{
			"error": err.Error(),
			"path":  record.Path,
		})
		return err
	}

	s.logger.Info(ctx, "script record created", map[string]interface{}{
		"script_id":  record.ID.String(),
		"path":       record.Path,
		"case_count": record.CaseCount,
	})
	return nil
}

// GetByPath retrieves the record for a storage path.
func (s *MySQLStore) GetByPath(ctx context.Context, path string) (*ScriptRecord, error) {
	var record ScriptRecord
	err := s.db.WithContext(ctx).
		Where("path = ?", path).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScriptNotFound
		}
		s.logger.Error(ctx, "failed to get script record by path", map[string]interface{}{
			"error": err.Error(),
			"path":  path,
		})
		return nil, err
	}

	return &record, nil
}

// ListByLocation retrieves all records at a location, newest first.
func (s *MySQLStore) ListByLocation(ctx context.Context, location string) ([]*ScriptRecord, error) {
	var records []*ScriptRecord
	err := s.db.WithContext(ctx).
		Where("location = ?", location).
		Order("updated_at DESC").
		Find(&records).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list script records", map[string]interface{}{
			"error":    err.Error(),
			"location": location,
		})
		return nil, err
	}

	return records, nil
}

// Update merges every setter into a single UPDATE statement.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	columns := make(map[string]interface{})
	for _, setter := range setters {
		for k, v := range setter() {
			columns[k] = v
		}
	}

	result := s.db.WithContext(ctx).
		Model(&ScriptRecord{}).
		Where("id = ?", id).
		Updates(columns)

	if result.Error != nil {
		s.logger.Error(ctx, "failed to update script record", map[string]interface{}{
			"error":     result.Error.Error(),
			"script_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrScriptNotFound
	}

	return nil
}

// Upsert records ids for path, creating the record when none exists.
func (s *MySQLStore) Upsert(ctx context.Context, location, path string, ids []string) (*ScriptRecord, error) {
	existing, err := s.GetByPath(ctx, path)
	switch {
	case errors.Is(err, ErrScriptNotFound):
		record := &ScriptRecord{Location: location, Path: path, CaseIDs: ids}
		if err := s.Create(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	case err != nil:
		return nil, err
	}

	if err := s.Update(ctx, existing.ID, SetCaseIDs(ids)); err != nil {
		return nil, err
	}
	return s.GetByPath(ctx, path)
}

// Delete deletes a record by its ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&ScriptRecord{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete script record", map[string]interface{}{
			"error":     result.Error.Error(),
			"script_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrScriptNotFound
	}

	s.logger.Info(ctx, "script record deleted", map[string]interface{}{
		"script_id": id.String(),
	})
	return nil
}

package scriptgen

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for script record persistence.
type Store interface {
	// Create creates a new script record.
	Create(ctx context.Context, record *ScriptRecord) error

	// GetByPath retrieves the record for a storage path.
	GetByPath(ctx context.Context, path string) (*ScriptRecord, error)

	// ListByLocation retrieves all records at a location, newest first.
	ListByLocation(ctx context.Context, location string) ([]*ScriptRecord, error)

	// Update updates a record with setter functions.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Upsert records ids for path, creating the record when none exists.
	Upsert(ctx context.Context, location, path string, ids []string) (*ScriptRecord, error)

	// Delete deletes a record by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateSetter returns the column-value pairs to apply in a partial UPDATE.
type UpdateSetter func() map[string]interface{}

// SetCaseIDs returns a setter that replaces the recorded case ids.
func SetCaseIDs(ids []string) UpdateSetter {
	return func() map[string]interface{} {
		return map[string]interface{}{
			"case_ids":   CaseIDs(ids),
			"case_count": len(ids),
		}
	}
}

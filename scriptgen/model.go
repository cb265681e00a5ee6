package scriptgen

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrScriptNotFound is returned when a script record is not found.
	ErrScriptNotFound = errors.New("script record not found")

	// ErrInvalidLocation is returned when location is empty.
	ErrInvalidLocation = errors.New("location is required")

	// ErrInvalidScriptPath is returned when path is empty.
	ErrInvalidScriptPath = errors.New("path is required")

	// ErrScriptAlreadyExists is returned when a record already exists for the path.
	ErrScriptAlreadyExists = errors.New("script record already exists for this path")
)

// CaseIDs is the ordered list of test case ids recorded in a script. It is
// stored as a JSON array.
type CaseIDs []string

// Value implements the driver.Valuer interface for database storage.
func (c CaseIDs) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *CaseIDs) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return errors.New("failed to scan CaseIDs: unsupported type")
	}
}

// ScriptRecord indexes a persisted script artifact by storage path and keeps
// the structured list of case ids it is known to contain.
type ScriptRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Location  string    `json:"location" gorm:"type:varchar(255);not null;index:idx_location"`
	Path      string    `json:"path" gorm:"type:varchar(512);not null;uniqueIndex:idx_path"`
	CaseIDs   CaseIDs   `json:"case_ids" gorm:"type:text"`
	CaseCount int       `json:"case_count" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new script record
func (r *ScriptRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the record has valid required fields.
func (r *ScriptRecord) Validate() error {
	if r.Location == "" {
		return ErrInvalidLocation
	}
	if r.Path == "" {
		return ErrInvalidScriptPath
	}
	return nil
}

package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrAssetNotFound is returned when an asset is not found.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetType is returned when asset type is invalid.
	ErrInvalidAssetType = errors.New("invalid asset type")

	// ErrInvalidTestRunID is returned when test_run_id is not set.
	ErrInvalidTestRunID = errors.New("test_run_id is required")

	// ErrInvalidAssetPath is returned when asset_path is empty.
	ErrInvalidAssetPath = errors.New("asset_path is required")
)

// AssetType represents the kind of artifact a run produced.
type AssetType string

const (
	AssetTypeScreenshot AssetType = "screenshot"
	AssetTypeScript     AssetType = "script"
	AssetTypeReport     AssetType = "report"
)

// IsValid checks if the asset type is valid.
func (at AssetType) IsValid() bool {
	switch at {
	case AssetTypeScreenshot, AssetTypeScript, AssetTypeReport:
		return true
	default:
		return false
	}
}

// TestRunAsset links a stored artifact to the run that produced it.
type TestRunAsset struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TestRunID  uuid.UUID `json:"test_run_id" gorm:"type:char(36);not null;index:idx_test_run_id"`
	AssetType  AssetType `json:"asset_type" gorm:"type:varchar(20);not null;index:idx_asset_type"`
	AssetPath  string    `json:"asset_path" gorm:"type:varchar(512);not null"`
	TestCaseID string    `json:"test_case_id,omitempty" gorm:"type:varchar(255)"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BeforeCreate hook to generate UUID before creating a new test run asset
func (a *TestRunAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now()
	}
	return nil
}

// Validate checks if the asset has valid required fields.
func (a *TestRunAsset) Validate() error {
	if a.TestRunID == uuid.Nil {
		return ErrInvalidTestRunID
	}
	if !a.AssetType.IsValid() {
		return ErrInvalidAssetType
	}
	if a.AssetPath == "" {
		return ErrInvalidAssetPath
	}
	return nil
}

package testrun

import (
	"testing"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/testutil"
)

// setupTestStore creates a test database and test run stores for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store, AssetStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &TestRun{}, &TestRunAsset{})

	log := logger.NewTestLogger()
	return db, NewMySQLStore(db, log), NewMySQLAssetStore(db, log)
}

// createTestRun creates a test run with default values.
func createTestRun(provider, screenName string) *TestRun {
	return &TestRun{
		Provider:   provider,
		Model:      "test-model",
		TargetURL:  "https://app.example.com",
		ScreenName: screenName,
	}
}

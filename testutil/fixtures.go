package testutil

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/ui-autotest/storage"
)

// CreateFixtures creates the given models in the database.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()
	for _, model := range models {
		if err := db.Create(model).Error; err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
	}
}

// SetupTestStorage returns local blob storage rooted in a temporary directory.
func SetupTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	return s
}

// WriteFile uploads content to path in s.
func WriteFile(t *testing.T, s storage.BlobStorage, path, content string) {
	t.Helper()
	if err := s.Upload(context.Background(), path, strings.NewReader(content)); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content stored at path in s.
func ReadFile(t *testing.T, s storage.BlobStorage, path string) string {
	t.Helper()
	data, err := storage.ReadAll(context.Background(), s, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

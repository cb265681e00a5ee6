package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	return s, dir
}

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		wantErr bool
	}{
		{name: "valid directory", baseDir: filepath.Join(t.TempDir(), "artifacts")},
		{name: "empty directory", baseDir: "", wantErr: true},
		{name: "current directory", baseDir: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewLocalStorage(tt.baseDir)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)

			info, err := os.Stat(tt.baseDir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	s, dir := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "scripts/login/test_1.spec.js", strings.NewReader("first")))
	require.NoError(t, s.Upload(ctx, "scripts/login/test_1.spec.js", strings.NewReader("second")))

	rc, err := s.Download(ctx, "scripts/login/test_1.spec.js")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "scripts", "login"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain after upload")
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	s, _ := newTestLocalStorage(t)

	_, err := s.Download(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_ReadAll(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "reports/report_1.md", strings.NewReader("# Report")))

	data, err := ReadAll(ctx, s, "reports/report_1.md")
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(data))

	_, err = ReadAll(ctx, s, "reports/none.md")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_DeleteAndExists(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "a.txt", strings.NewReader("x")))

	exists, err := s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "a.txt"))

	exists, err = s.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, s.Delete(ctx, "a.txt"), ErrFileNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	for _, p := range []string{
		"scripts/checkout/test_b.spec.js",
		"scripts/checkout/test_a.spec.js",
		"scripts/checkout/nested/notes.txt",
		"scripts/login/test_c.spec.js",
		"reports/report_1.md",
	} {
		require.NoError(t, s.Upload(ctx, p, strings.NewReader(p)))
	}

	t.Run("prefix", func(t *testing.T) {
		paths, err := s.List(ctx, "scripts/checkout")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"scripts/checkout/nested/notes.txt",
			"scripts/checkout/test_a.spec.js",
			"scripts/checkout/test_b.spec.js",
		}, paths)
	})

	t.Run("missing prefix", func(t *testing.T) {
		paths, err := s.List(ctx, "scripts/unknown")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("whole store", func(t *testing.T) {
		paths, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, paths, 5)
	})

	t.Run("traversal rejected", func(t *testing.T) {
		_, err := s.List(ctx, "../elsewhere")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestLocalStorage_GetURL(t *testing.T) {
	s, dir := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "screenshots/TC001.png", strings.NewReader("png")))

	url, err := s.GetURL(ctx, "screenshots/TC001.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screenshots", "TC001.png"), url)

	_, err = s.GetURL(ctx, "screenshots/TC002.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	for _, p := range []string{"", "../outside.txt", "a/../../outside.txt", ".."} {
		t.Run(p, func(t *testing.T) {
			err := s.Upload(ctx, p, strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrInvalidPath)

			_, err = s.Exists(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

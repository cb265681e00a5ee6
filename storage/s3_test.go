package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		wantErr bool
	}{
		{name: "valid bucket and region", bucket: "test-bucket", region: "us-east-1"},
		{name: "empty bucket", region: "us-east-1", wantErr: true},
		{name: "empty region", bucket: "test-bucket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Storage(tt.bucket, tt.region)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, s.bucket)
			assert.Equal(t, 15*time.Minute, s.presignExpiration)
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "test.txt"},
		{name: "nested", path: "scripts/login/test.spec.js"},
		{name: "dot prefix cleaned", path: "./test.txt"},
		{name: "inner traversal cleaned", path: "subdir/../outside.txt"},
		{name: "dot dot file name", path: "..report.md"},
		{name: "empty", path: "", wantErr: true},
		{name: "traversal", path: "../outside.txt", wantErr: true},
		{name: "parent only", path: "..", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestS3Storage_ObjectKey(t *testing.T) {
	s := &S3Storage{bucket: "b", keyPrefix: "autotest"}

	key, err := s.objectKey("scripts/login/test_1.spec.js")
	require.NoError(t, err)
	assert.Equal(t, "autotest/scripts/login/test_1.spec.js", key)
	assert.Equal(t, "scripts/login/test_1.spec.js", s.relativePath(key))

	_, err = s.objectKey("../escape")
	assert.ErrorIs(t, err, ErrInvalidPath)

	bare := &S3Storage{bucket: "b"}
	key, err = bare.objectKey("./reports/r.md")
	require.NoError(t, err)
	assert.Equal(t, "reports/r.md", key)
}

func TestNewBlobStorage(t *testing.T) {
	tests := []struct {
		name        string
		storageType string
		config      map[string]interface{}
		wantErr     bool
	}{
		{name: "local", storageType: "local", config: map[string]interface{}{"base_dir": t.TempDir()}},
		{name: "local uppercase", storageType: "LOCAL", config: map[string]interface{}{"base_dir": t.TempDir()}},
		{name: "local missing base_dir", storageType: "local", config: map[string]interface{}{}, wantErr: true},
		{
			name:        "s3 with prefix",
			storageType: "s3",
			config:      map[string]interface{}{"bucket": "b", "region": "us-east-1", "prefix": "/runs/"},
		},
		{name: "s3 missing bucket", storageType: "s3", config: map[string]interface{}{"region": "us-east-1"}, wantErr: true},
		{name: "s3 missing region", storageType: "s3", config: map[string]interface{}{"bucket": "b"}, wantErr: true},
		{name: "unsupported", storageType: "gcs", config: map[string]interface{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewBlobStorage(tt.storageType, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
			if s3s, ok := s.(*S3Storage); ok {
				assert.Equal(t, "runs", s3s.keyPrefix)
			}
		})
	}
}

func TestIsS3NotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: true},
		{name: "not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isS3NotFoundError(tt.err))
		})
	}
}

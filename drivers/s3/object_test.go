package s3driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gocontent "github.com/shoraid/go-content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectStorage(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ObjectStorageConfig
		expectedErr error
	}{
		{
			name: "should create new object storage successfully",
			cfg: ObjectStorageConfig{
				Bucket:    "test-bucket",
				Region:    "us-east-1",
				AccessKey: "test-access-key",
				SecretKey: "test-secret-key",
			},
			expectedErr: nil,
		},
		{
			name: "should create new object storage successfully with custom endpoint",
			cfg: ObjectStorageConfig{
				Bucket:    "test-bucket",
				Region:    "us-east-1",
				AccessKey: "test-access-key",
				SecretKey: "test-secret-key",
				Endpoint:  "http://localhost:9000",
			},
			expectedErr: nil,
		},
		{
			name: "should return error when bucket is missing",
			cfg: ObjectStorageConfig{
				Region:    "us-east-1",
				AccessKey: "test-access-key",
				SecretKey: "test-secret-key",
			},
			expectedErr: gocontent.ErrConfig,
		},
		{
			name: "should return error when access key is missing",
			cfg: ObjectStorageConfig{
				Bucket:    "test-bucket",
				Region:    "us-east-1",
				SecretKey: "test-secret-key",
			},
			expectedErr: gocontent.ErrConfig,
		},
		{
			name: "should return error when secret key is missing",
			cfg: ObjectStorageConfig{
				Bucket:    "test-bucket",
				Region:    "us-east-1",
				AccessKey: "test-access-key",
			},
			expectedErr: gocontent.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewObjectStorage(tt.cfg)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr, "expected error when config is invalid")
				assert.Nil(t, storage, "expected storage to be nil on error")
			} else {
				assert.NoError(t, err, "expected no error when config is valid")
				assert.NotNil(t, storage, "expected storage to be not nil on success")
			}
		})
	}
}

func TestObjectStorage_SaveLoad(t *testing.T) {
	ctx := context.Background()
	client := &mockS3Client{}
	storage := &ObjectStorage{bucket: "test-bucket", prefix: "content/", client: client}

	require.NoError(t, storage.Save(ctx, "first", "docs/file.txt"))
	require.NoError(t, storage.Save(ctx, "second", "docs/file.txt"))
	assert.Equal(t, "content/docs/file.txt", client.lastKey, "expected prefix to be applied")

	got, err := storage.Load(ctx, "docs/file.txt")
	assert.NoError(t, err, "expected no error when object exists")
	assert.Equal(t, "second", got, "expected save to overwrite the object")
}

func TestObjectStorage_Download(t *testing.T) {
	ctx := context.Background()
	storage := &ObjectStorage{bucket: "test-bucket", client: &mockS3Client{}}
	require.NoError(t, storage.Save(ctx, "payload", "file.txt"))

	dest := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	require.NoError(t, storage.Download(ctx, "file.txt", dest), "expected download to create parent directories")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestObjectStorage_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		key         string
		mockErr     error
		save        bool
		expectedErr error
	}{
		{
			name:        "should return invalid name when key is empty",
			key:         "",
			save:        true,
			expectedErr: gocontent.ErrInvalidName,
		},
		{
			name:        "should return invalid name when key contains invalid characters",
			key:         "bad key?.txt",
			save:        true,
			expectedErr: gocontent.ErrInvalidName,
		},
		{
			name:        "should return invalid name when key traverses upwards",
			key:         "a/../b.txt",
			expectedErr: gocontent.ErrInvalidName,
		},
		{
			name:        "should return not found when object is missing",
			key:         "missing.txt",
			expectedErr: gocontent.ErrNotFound,
		},
		{
			name:        "should return auth error when access is denied",
			key:         "file.txt",
			mockErr:     &mockAPIError{code: "AccessDenied"},
			save:        true,
			expectedErr: gocontent.ErrAuth,
		},
		{
			name:        "should return transport error when PutObject fails",
			key:         "file.txt",
			mockErr:     errors.New("s3 error"),
			save:        true,
			expectedErr: gocontent.ErrTransport,
		},
		{
			name:        "should return transport error when GetObject fails",
			key:         "file.txt",
			mockErr:     errors.New("connection reset"),
			expectedErr: gocontent.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &ObjectStorage{
				bucket: "test-bucket",
				client: &mockS3Client{err: tt.mockErr},
			}

			var err error
			if tt.save {
				err = storage.Save(ctx, "testdata", tt.key)
			} else {
				_, err = storage.Load(ctx, tt.key)
			}

			assert.ErrorIs(t, err, tt.expectedErr, "expected matching error")
		})
	}
}

package gocontent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade_DefaultsToWorkingDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, SaveContent(ctx, "Hello, World!", "test_file.txt", nil))

	data, err := os.ReadFile(filepath.Join(dir, "test_file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(data), "expected file in working directory")

	got, err := LoadContent(ctx, "test_file.txt", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Hello, World!", got)

	require.NoError(t, DownloadContent(ctx, "test_file.txt", "copies/copy.txt", nil))
	data, err = os.ReadFile(filepath.Join(dir, "copies", "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(data))
}

func TestFacade_DelegatesToStrategy(t *testing.T) {
	ctx := context.Background()
	mockStrategy := new(MockStrategy)
	mockStrategy.On("Save", ctx, "c", "n").Return(ErrAuth).Once()
	mockStrategy.On("Load", ctx, "n").Return("", ErrCapability).Once()
	mockStrategy.On("Download", ctx, "n", "d").Return(ErrNotFound).Once()

	assert.ErrorIs(t, SaveContent(ctx, "c", "n", mockStrategy), ErrAuth)
	_, err := LoadContent(ctx, "n", mockStrategy)
	assert.ErrorIs(t, err, ErrCapability)
	assert.ErrorIs(t, DownloadContent(ctx, "n", "d", mockStrategy), ErrNotFound)

	mockStrategy.AssertExpectations(t)
}

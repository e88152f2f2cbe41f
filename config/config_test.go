package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	gocontent "github.com/shoraid/go-content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
default: notes
timeout: 5s
backends:
  notes:
    kind: local
    path: %s
  chat:
    kind: telegram
    token: "123:abc"
    channel_id: "-1001"
  channel:
    kind: discord
    webhook_url: https://example.com/api/webhooks/1/x
  bucket:
    kind: s3
    bucket: content
    region: us-east-1
    access_key: key
    secret_key: secret
    endpoint: http://localhost:9000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(sampleYAML, root))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes", cfg.Default)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Len(t, cfg.Backends, 4)
	assert.Equal(t, Backend{Kind: KindLocal, Path: root}, cfg.Backends["notes"])
	assert.Equal(t, "-1001", cfg.Backends["chat"].ChannelID)
	assert.Equal(t, "secret", cfg.Backends["bucket"].SecretKey)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(sampleYAML, t.TempDir()))
	t.Setenv("CONTENT_DEFAULT", "chat")
	t.Setenv("CONTENT_TIMEOUT", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chat", cfg.Default)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err, "expected a missing default file to be tolerated")
	assert.Equal(t, DefaultAlias, cfg.Default)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, map[string]Backend{DefaultAlias: {Kind: KindLocal}}, cfg.Backends)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "should return config error when explicit file is missing",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
		},
		{
			name: "should return config error when default alias is undefined",
			path: func(t *testing.T) string {
				return writeConfig(t, "default: missing\nbackends:\n  a:\n    kind: local\n")
			},
		},
		{
			name: "should return config error for an unknown kind",
			path: func(t *testing.T) string {
				return writeConfig(t, "default: a\nbackends:\n  a:\n    kind: ftp\n")
			},
		},
		{
			name: "should return config error for malformed yaml",
			path: func(t *testing.T) string { return writeConfig(t, "default: [unclosed\n") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorIs(t, err, gocontent.ErrConfig)
		})
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	cfg, err := Load(writeConfig(t, fmt.Sprintf(sampleYAML, root)))
	require.NoError(t, err)

	m, err := Build(ctx, cfg, nil)
	require.NoError(t, err)

	require.NoError(t, m.Save(ctx, "hello", "a.txt"))
	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data), "expected default backend to be the local one")

	assert.False(t, m.Storage("chat").Supports(gocontent.OpLoad), "expected telegram to be write-only")
	assert.False(t, m.Storage("channel").Supports(gocontent.OpLoad), "expected webhook-only discord to be unsearchable")
	assert.True(t, m.Storage("channel").Supports(gocontent.OpWebhook))
	assert.True(t, m.Storage("bucket").Supports(gocontent.OpDownload))
}

func TestBuild_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	cfg := Config{
		Default:  "disk",
		Metrics:  true,
		Backends: map[string]Backend{"disk": {Kind: KindLocal, Path: t.TempDir()}},
	}

	m, err := Build(ctx, cfg, reg)
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, "x", "x.txt"))

	count, err := testutil.GatherAndCount(reg, "content_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "expected the save to be recorded")
}

func TestStrategyFor_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		backend Backend
	}{
		{name: "should reject unknown kind", backend: Backend{Kind: "ftp"}},
		{name: "should reject gdrive without service account", backend: Backend{Kind: KindGDrive}},
		{name: "should reject discord without credentials", backend: Backend{Kind: KindDiscord}},
		{name: "should reject telegram without chat id", backend: Backend{Kind: KindTelegram, Token: "t"}},
		{name: "should reject s3 without bucket", backend: Backend{Kind: KindS3, AccessKey: "k", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyFor(ctx, tt.backend, 0)
			assert.ErrorIs(t, err, gocontent.ErrConfig)
			assert.Nil(t, s)
		})
	}
}

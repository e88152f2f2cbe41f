package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
	"github.com/shoraid/go-content/drivers/discord"
	"github.com/shoraid/go-content/drivers/gdrive"
	s3driver "github.com/shoraid/go-content/drivers/s3"
	"github.com/shoraid/go-content/drivers/telegram"
	"github.com/shoraid/go-content/metrics"
)

// Build constructs every backend in cfg and returns a Manager defaulting to cfg.Default.
// When cfg.Metrics is set each backend is instrumented on reg
// (prometheus.DefaultRegisterer when reg is nil).
func Build(ctx context.Context, cfg Config, reg prometheus.Registerer) (gocontent.Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var collectors *metrics.Collectors
	if cfg.Metrics {
		c, err := metrics.NewCollectors(reg)
		if err != nil {
			return nil, err
		}
		collectors = c
	}

	storages := make(map[string]gocontent.Strategy, len(cfg.Backends))
	for alias, b := range cfg.Backends {
		s, err := StrategyFor(ctx, b, cfg.Timeout)
		if err != nil {
			log.Error().Err(err).Str("alias", alias).Str("kind", b.Kind).Msg("failed to create backend")
			return nil, fmt.Errorf("backend %q: %w", alias, err)
		}

		if collectors != nil {
			s = collectors.Instrument(alias, s)
		}
		storages[alias] = s
	}

	return gocontent.NewManager(cfg.Default, storages)
}

// StrategyFor creates the adapter for a single backend definition.
func StrategyFor(ctx context.Context, b Backend, timeout time.Duration) (gocontent.Strategy, error) {
	switch strings.ToLower(b.Kind) {
	case KindLocal:
		return gocontent.NewLocalStorage(gocontent.LocalRoot{Path: b.Path}), nil
	case KindGDrive:
		return createDrive(ctx, b)
	case KindDiscord:
		return createDiscord(b, timeout)
	case KindTelegram:
		return createTelegram(b, timeout)
	case KindS3:
		return createS3(b)
	default:
		return nil, fmt.Errorf("%w: unsupported backend kind %q", gocontent.ErrConfig, b.Kind)
	}
}

func createTelegram(b Backend, timeout time.Duration) (gocontent.Strategy, error) {
	s, err := telegram.New(telegram.Config{
		Credential: gocontent.BotToken{Token: b.Token, ChannelID: b.ChannelID},
		BaseURL:    b.BaseURL,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func createS3(b Backend) (gocontent.Strategy, error) {
	s, err := s3driver.NewObjectStorage(s3driver.ObjectStorageConfig{
		Bucket:    b.Bucket,
		Prefix:    b.Prefix,
		Region:    b.Region,
		AccessKey: b.AccessKey,
		SecretKey: b.SecretKey,
		Endpoint:  b.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func createDrive(ctx context.Context, b Backend) (gocontent.Strategy, error) {
	if b.ServiceAccountFile == "" {
		return nil, fmt.Errorf("%w: gdrive requires service_account_file", gocontent.ErrConfig)
	}

	s, err := gdrive.New(ctx, gdrive.Config{
		Credential: gocontent.ServiceAccountFile{Path: b.ServiceAccountFile},
		FolderID:   b.FolderID,
		ChunkSize:  b.ChunkSize,
		Endpoint:   b.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func createDiscord(b Backend, timeout time.Duration) (gocontent.Strategy, error) {
	var creds []gocontent.Credential
	if b.Token != "" || b.ChannelID != "" {
		creds = append(creds, gocontent.BotToken{Token: b.Token, ChannelID: b.ChannelID})
	}
	if b.WebhookURL != "" {
		creds = append(creds, gocontent.WebhookURL{URL: b.WebhookURL})
	}

	s, err := discord.New(discord.Config{
		Credentials:   creds,
		HistoryWindow: b.HistoryWindow,
		BaseURL:       b.BaseURL,
		Timeout:       timeout,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Package config loads backend definitions with viper and builds a gocontent.Manager from them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "CONTENT"
	DefaultAlias   = "local"
	DefaultTimeout = 30 * time.Second
)

// Backend kinds understood by Build.
const (
	KindLocal    = "local"
	KindGDrive   = "gdrive"
	KindDiscord  = "discord"
	KindTelegram = "telegram"
	KindS3       = "s3"
)

// Config is the root of a content configuration file.
//
//	default: docs
//	timeout: 30s
//	backends:
//	  docs:
//	    kind: discord
//	    token: ...
//	    channel_id: "42"
type Config struct {
	Default  string             `mapstructure:"default"`
	Timeout  time.Duration      `mapstructure:"timeout"`
	Metrics  bool               `mapstructure:"metrics"`
	Backends map[string]Backend `mapstructure:"backends"`
}

// Backend describes one storage. Only the fields of its Kind are read.
type Backend struct {
	Kind string `mapstructure:"kind"`

	// local
	Path string `mapstructure:"path"`

	// gdrive
	ServiceAccountFile string `mapstructure:"service_account_file"`
	FolderID           string `mapstructure:"folder_id"`
	ChunkSize          int    `mapstructure:"chunk_size"`

	// discord, telegram
	Token         string `mapstructure:"token"`
	ChannelID     string `mapstructure:"channel_id"`
	WebhookURL    string `mapstructure:"webhook_url"`
	HistoryWindow int    `mapstructure:"history_window"`

	// s3
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// shared overrides
	BaseURL  string `mapstructure:"base_url"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads the file at path, or ./content.{yaml,json,toml} when path is empty,
// and applies CONTENT_* environment overrides.
// A missing default file is not an error: the result then holds a single local backend.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("default", DefaultAlias)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("metrics", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("content")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			log.Error().Err(err).Str("path", path).Msg("failed to read config")
			return Config{}, fmt.Errorf("%w: read config: %v", gocontent.ErrConfig, err)
		}
		log.Debug().Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Msg("failed to decode config")
		return Config{}, fmt.Errorf("%w: decode config: %v", gocontent.ErrConfig, err)
	}

	if len(cfg.Backends) == 0 {
		cfg.Backends = map[string]Backend{DefaultAlias: {Kind: KindLocal}}
	}

	return cfg, cfg.Validate()
}

// Validate checks that the default alias exists and every backend names a known kind.
func (c Config) Validate() error {
	if _, ok := c.Backends[c.Default]; !ok {
		return fmt.Errorf("%w: default backend %q is not defined", gocontent.ErrConfig, c.Default)
	}

	for alias, b := range c.Backends {
		switch strings.ToLower(b.Kind) {
		case KindLocal, KindGDrive, KindDiscord, KindTelegram, KindS3:
		default:
			return fmt.Errorf("%w: backend %q has unsupported kind %q", gocontent.ErrConfig, alias, b.Kind)
		}
	}

	return nil
}

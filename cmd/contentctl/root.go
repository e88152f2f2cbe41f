package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
	"github.com/shoraid/go-content/config"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	backend    string
	debug      bool

	manager gocontent.Manager
}

func newRootCmd() *cobra.Command {
	return (&cli{}).command()
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Save and load text files across content backends",
		Long:          "contentctl drives the configured storages (local, gdrive, discord, telegram, s3) through one interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./content.yaml)")
	root.PersistentFlags().StringVarP(&c.backend, "backend", "b", "", "backend alias (default from config)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(c.saveCmd())
	root.AddCommand(c.loadCmd())
	root.AddCommand(c.downloadCmd())
	root.AddCommand(c.latestCmd())
	root.AddCommand(c.capsCmd())

	return root
}

func (c *cli) setup(ctx context.Context) error {
	level := zerolog.WarnLevel
	if c.debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if c.manager != nil {
		return nil
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	if c.backend != "" {
		if _, ok := cfg.Backends[c.backend]; !ok {
			return fmt.Errorf("%w: backend %q is not defined", gocontent.ErrConfig, c.backend)
		}
	}

	m, err := config.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}

	if c.backend != "" {
		m = m.Storage(c.backend)
	}
	c.manager = m
	return nil
}

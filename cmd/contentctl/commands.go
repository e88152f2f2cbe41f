package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	gocontent "github.com/shoraid/go-content"
	"github.com/spf13/cobra"
)

func (c *cli) saveCmd() *cobra.Command {
	var webhook bool

	cmd := &cobra.Command{
		Use:   "save NAME [FILE]",
		Short: "Save FILE (or stdin) under NAME",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 2 {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			if webhook {
				return c.manager.SaveWebhook(cmd.Context(), string(data), args[0])
			}
			return c.manager.Save(cmd.Context(), string(data), args[0])
		},
	}

	cmd.Flags().BoolVar(&webhook, "webhook", false, "upload through the webhook instead of the bot")
	return cmd
}

func (c *cli) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load NAME",
		Short: "Print the content stored under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := c.manager.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func (c *cli) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download NAME DEST",
		Short: "Write the content stored under NAME to DEST",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.manager.Download(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *cli) latestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest [N]",
		Short: "Print the N-th most recent file, 0 being the newest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", args[0], err)
				}
				n = v
			}

			content, err := c.manager.LoadByRecencyIndex(cmd.Context(), n)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func (c *cli) capsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "List the operations the selected backend supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, op := range []gocontent.Operation{
				gocontent.OpSave,
				gocontent.OpLoad,
				gocontent.OpDownload,
				gocontent.OpRecency,
				gocontent.OpWebhook,
			} {
				fmt.Fprintf(out, "%-22s %t\n", op, c.manager.Supports(op))
			}
			if window := c.manager.Capabilities().HistoryWindow; window > 0 {
				fmt.Fprintf(out, "%-22s %d\n", "history_window", window)
			}
			return nil
		},
	}
}

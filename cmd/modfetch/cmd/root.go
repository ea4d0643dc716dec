package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"modfetch/cmd/modfetch/cmd/games"
	"modfetch/cmd/modfetch/globals"
	"modfetch/lib/restyutil"
	"modfetch/lib/scrapers/smods/catalog"
	"modfetch/lib/scrapers/smods/core"
	"modfetch/lib/telemetry"
	"modfetch/lib/util/serviceutil"
	"modfetch/services/fetch"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpDir    string
	timeout    int
	retries    int
)

var tel telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:           "modfetch",
	Short:         "modfetch resolves steam workshop items to direct downloads through catalogue.smods.ru.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := fetch.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = timeout
		}
		if cmd.Flags().Changed("retries") {
			cfg.Retries = retries
		}
		cfg = cfg.Clamp()

		tel, err = telemetry.SetupFromEnv(cmd.Context(), "modfetch")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
		if tel.Enabled() {
			telemetry.InstrumentPerfStats(cmd.Context())
		}

		opts := core.SessionOptions{Timeout: cfg.TimeoutDuration()}
		if dumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(dumpDir)
			if err != nil {
				return fmt.Errorf("http dump dir: %w", err)
			}
			opts.Dump = output
		}
		session, err := core.NewSession(opts)
		if err != nil {
			return err
		}

		ctx := globals.Set(cmd.Context(), &globals.Value{
			Config:  cfg,
			Session: session,
			Catalog: catalog.Store{
				Path:    cfg.GamesCache,
				Source:  catalog.DefaultSource,
				Session: session,
			},
		})
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.WithoutCancel(cmd.Context()))
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", fetch.DefaultConfigPath, "path to the json5 config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&dumpDir, "dump-http", "", "with --verbose, write every http exchange into this directory")
	flags.IntVar(&timeout, "timeout", 25, "request timeout in seconds (5-180)")
	flags.IntVar(&retries, "retries", 2, "retry count for archive downloads (0-10)")

	rootCmd.AddCommand(games.RootCmd)
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Warn("interrupted")
		os.Exit(130)
	}
	if err != nil {
		serviceutil.Fatal("modfetch failed", err)
	}
}

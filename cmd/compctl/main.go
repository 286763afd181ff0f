// Command compctl is the operator CLI for compwatch: account, business
// profile, competitor setup and menu sync against a running API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foxxcyber/compwatch/internal/cli"
	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/config"
	"github.com/foxxcyber/compwatch/internal/setup"
)

var (
	// Global flags
	verbose      bool
	configFile   string
	apiURL       string
	outputFormat string

	logger *zap.Logger
	cfg    *config.CLIConfig
	api    *client.Client
	out    *cli.Printer
)

var rootCmd = &cobra.Command{
	Use:   "compctl",
	Short: "Track competitors and their menus",
	Long: `compctl drives a compwatch server.

Typical first run:
  compctl register --email you@example.com
  compctl setup

After that, "compctl sync" refreshes every tracked competitor's menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.LoadCLI(configFile)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if !cli.ValidFormat(outputFormat) {
			return fmt.Errorf("unknown output format %q", outputFormat)
		}

		out = cli.NewPrinter(cmd.OutOrStdout())
		api = client.New(cfg.APIURL, client.NewFileStore(cfg.TokenFile), client.WithLogger(logger))

		logger.Debug("compctl configured",
			zap.String("api_url", cfg.APIURL),
			zap.String("token_file", cfg.TokenFile),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.compwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API server url, overrides the config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", cli.FormatTable, "output format: table, json or yaml")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	rootCmd.AddCommand(profileCmd, trackingCmd)
	rootCmd.AddCommand(searchCmd, setupCmd, syncCmd)
	rootCmd.AddCommand(competitorsCmd, menuCmd)
}

// render prints v as json/yaml when requested, otherwise calls table
func render(v any, table func()) error {
	if outputFormat == cli.FormatTable {
		table()
		return nil
	}
	return cli.Encode(out.Writer(), outputFormat, v)
}

// fail reports err the way notifications do and returns it for the exit code
func fail(err error) error {
	logger.Debug("command failed", zap.Error(err))
	level := setup.LevelError
	if errors.Is(err, client.ErrAuthRequired) {
		level = setup.LevelWarning
	}
	out.Notify(level, client.UserMessage(err))
	return errReported{err}
}

type errReported struct{ error }

func (e errReported) Unwrap() error { return e.error }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported errReported
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

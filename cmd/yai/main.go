package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/config"
	"yai.app/assessment-assistant/internal/logging"
	"yai.app/assessment-assistant/internal/telemetry"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// app carries what every subcommand shares.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	harness  *telemetry.Harness
	logLevel string
	offline  bool
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		return err
	}
	if !cfg.DotEnvLoaded {
		logger.Debug("No .env file found, relying on environment variables")
	}

	sinks := []telemetry.Sink{telemetry.NewLogSink(logger)}
	if !a.offline {
		sinks = append(sinks, telemetry.NewHTTPSink(
			telemetry.EventsEndpoint(cfg.APIBaseURL),
			&http.Client{Timeout: 5 * time.Second},
		))
	}
	a.cfg = cfg
	a.logger = logger
	a.harness = telemetry.New(logger, telemetry.WithSinks(sinks...), telemetry.WithBufferSize(cfg.TelemetryBuffer))
	a.harness.Init()

	a.harness.TrackEvent("navigation", map[string]any{"to": cmd.Name()})
	return nil
}

func (a *app) teardown() error {
	if a.harness == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.harness.Shutdown(ctx)
	a.logger.Sync()
	return err
}

// guarded reports a subcommand panic through the harness and turns it into
// an error.
func (a *app) guarded(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if r := recover(); r != nil {
				a.harness.ReportPanic("Uncaught Panic", r, debug.Stack(), map[string]any{"type": "panic", "where": cmd.Name()})
				err = fmt.Errorf("%s crashed: %v", cmd.Name(), r)
			}
		}()
		return run(cmd, args)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yai",
		Short: "Personality and conflict-style assessments with an AI assistant",
		Long: `yai runs the two self-assessments in the terminal and talks to the
assistant served by the yai backend.

  yai personality   # 12 statements on a 1-7 scale, four-letter type
  yai conflict      # 12 forced choices, dominant conflict style
  yai chat          # assistant chat (/retry after a failure, /quit to leave)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "ERROR", "diagnostic log level, overrides LOG_LEVEL (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().BoolVar(&a.offline, "offline", false, "do not forward analytics events to the backend")

	rootCmd.AddCommand(newPersonalityCmd(a), newConflictCmd(a), newChatCmd(a))
	return rootCmd
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	// Teardown runs after failures too; cobra skips post-run hooks then.
	if terr := a.teardown(); err == nil {
		err = terr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		os.Exit(1)
	}
}

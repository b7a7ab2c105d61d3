package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/config"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/internal/logging"
	"github.com/vvka-141/sparkify-dwh/internal/services"
	"github.com/vvka-141/sparkify-dwh/internal/ui"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

type flagValues struct {
	configPath string
	recreate   bool
	force      bool
	timeout    time.Duration
	logFormat  string
	verbose    bool
}

var flags flagValues

var logFormats = []string{logging.FormatConsole, logging.FormatJSON}

// newPipeline and isInteractive are replaced in tests.
var (
	newPipeline = func(logger dwh.Logger, approver dwh.Approver) dwh.Pipeline {
		return services.NewPipelineService(db.NewConnector, approver, logger)
	}
	isInteractive = ui.IsInteractive
)

// buildPipelineConfig loads the configuration file and environment into a
// PipelineConfig carrying the shared flags. Recreate is left to the caller.
func buildPipelineConfig(cmd *cobra.Command) (dwh.PipelineConfig, error) {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return dwh.PipelineConfig{}, err
	}

	if flags.timeout < 0 {
		return dwh.PipelineConfig{}, fmt.Errorf("--timeout cannot be negative: %w", dwh.ErrInvalidConfig)
	}

	if flags.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Configuration resolved:\n")
		fmt.Fprintf(os.Stderr, "  Cluster: %s\n", db.RedactedConnectionString(&cfg.Connection))
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", cfg.Connection.AuthMethod)
		fmt.Fprintf(os.Stderr, "  Log Data: %s\n", cfg.Ingestion.LogData)
		fmt.Fprintf(os.Stderr, "  Song Data: %s\n", cfg.Ingestion.SongData)
	}

	return dwh.PipelineConfig{
		Connection: cfg.Connection,
		Ingestion:  cfg.Ingestion,
		Force:      flags.force,
		Timeout:    flags.timeout,
		Verbose:    flags.verbose,
	}, nil
}

// loadConfig reads --config. A missing default file falls back to the
// environment; a missing file named explicitly is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if errors.Is(err, config.ErrConfigNotFound) && !cmd.Flags().Changed("config") {
		return config.Load("")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// checkApprovalMode refuses destructive runs nobody can confirm.
func checkApprovalMode(recreate, force bool) error {
	if recreate && !force && !isInteractive() {
		return fmt.Errorf("dropping tables needs confirmation but no terminal is attached; pass --force to proceed: %w", dwh.ErrApprovalDenied)
	}
	return nil
}

func newApprover(force, verbose bool) dwh.Approver {
	if force {
		return ui.NewForcedApprover(verbose)
	}
	return ui.NewInteractiveApprover(verbose)
}

// newLogger builds the run logger. Every line carries the command name.
func newLogger(command string, verbose bool) (*logging.ZapLogger, error) {
	logger, err := logging.NewZapLogger(verbose, flags.logFormat)
	if err != nil {
		return nil, fmt.Errorf("--log-format: %w: %w", err, dwh.ErrInvalidConfig)
	}
	return logger.With("command", command), nil
}

// runContext returns a context cancelled by SIGINT/SIGTERM and, when
// timeout is positive, by the deadline.
func runContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		parent := cancel
		cancel = func() {
			cancelTimeout()
			parent()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

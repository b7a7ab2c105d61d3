package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

var rootCmd = &cobra.Command{
	Use:   "sparkify-dwh",
	Short: "Load Sparkify event logs and song metadata into a Redshift star schema",
	Long: `sparkify-dwh bulk-loads the raw JSON event logs and song catalog from S3
into two staging tables, then transforms them into the analytics star schema:
songplay_table (facts) and user_table, song_table, artist_table, time_table.

Every statement commits on its own. A failed statement stops the run and
leaves the statements before it committed. Rerunning without --recreate
appends the same rows again: Redshift does not enforce primary keys, so
songplays and dimension rows are duplicated. Use --recreate for a clean load.

Configuration is read from an INI file (default dwh.cfg) with the groups
CLUSTER, IAM_ROLE and S3. Any key can be overridden from the environment as
DWH_<GROUP>_<KEY>, e.g. DWH_CLUSTER_HOST. A .env file in the working
directory is loaded first. $PGPASSWORD is used when no password is set.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Warehouse connection failed
  12 - User denied table recreation
  13 - SQL execution failed`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPipeline,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", dwh.DefaultConfigFile,
		"INI configuration file with CLUSTER, IAM_ROLE and S3 groups\n"+
			"Pass an empty value to read the environment only")
	pf.BoolVar(&flags.force, "force", false,
		"Skip the interactive approval prompt before tables are dropped\n"+
			"A 5 second countdown still gives a chance to cancel")
	pf.DurationVar(&flags.timeout, "timeout", 0,
		"Deadline for the whole run, e.g. 30m or 2h (0 means none)")
	pf.StringVar(&flags.logFormat, "log-format", "console", "Log format: console|json")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every statement with its row count and duration")

	rootCmd.Flags().BoolVar(&flags.recreate, "recreate", false,
		"Drop and recreate every table before loading\n"+
			"Requires interactive confirmation unless --force is used")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeFixed(logFormats))
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	config, err := buildPipelineConfig(cmd)
	if err != nil {
		return err
	}
	config.Recreate = flags.recreate

	if err := checkApprovalMode(config.Recreate, config.Force); err != nil {
		return err
	}

	logger, err := newLogger(cmd.Name(), config.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := runContext(config.Timeout)
	defer cancel()

	pipeline := newPipeline(logger, newApprover(config.Force, config.Verbose))
	if err := pipeline.Run(ctx, config); err != nil {
		logger.Error("pipeline failed: %v", err)
		return fmt.Errorf("pipeline failed: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Drop and recreate every staging and analytics table",
	Long: `create-tables drops the seven tables if they exist and creates them empty.
No data is loaded. Asks for confirmation unless --force is used.

Examples:
  sparkify-dwh create-tables
  sparkify-dwh create-tables --config prod.cfg --force`,
	Args: cobra.NoArgs,
	RunE: runCreateTables,
}

func init() {
	rootCmd.AddCommand(createTablesCmd)
}

func runCreateTables(cmd *cobra.Command, _ []string) error {
	config, err := buildPipelineConfig(cmd)
	if err != nil {
		return err
	}
	config.Recreate = true

	if err := checkApprovalMode(true, config.Force); err != nil {
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
	if err := pipeline.Setup(ctx, config); err != nil {
		logger.Error("table setup failed: %v", err)
		return fmt.Errorf("table setup failed: %w", err)
	}
	return nil
}

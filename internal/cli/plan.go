package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/checksum"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

const (
	planFormatText = "text"
	planFormatYAML = "yaml"
)

var planFormats = []string{planFormatText, planFormatYAML}

var dialects = []string{string(catalog.DialectRedshift), string(catalog.DialectPostgres)}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the statements a run would execute, without connecting",
	Long: `plan renders every statement in execution order: drops, creates, the two
COPY loads and the five transforms. Only the IAM_ROLE and S3 groups are
needed; the cluster is never contacted.

Examples:
  sparkify-dwh plan
  sparkify-dwh plan --format yaml > plan.yaml
  sparkify-dwh plan --dialect postgres`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var planFlags struct {
	format  string
	dialect string
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFlags.format, "format", planFormatText, "Output format: text|yaml")
	planCmd.Flags().StringVar(&planFlags.dialect, "dialect", string(catalog.DialectRedshift),
		"DDL dialect: redshift|postgres")

	_ = planCmd.RegisterFlagCompletionFunc("format", completeFixed(planFormats))
	_ = planCmd.RegisterFlagCompletionFunc("dialect", completeFixed(dialects))
}

// planDocument is the YAML shape of a plan.
type planDocument struct {
	Dialect    string          `yaml:"dialect"`
	Checksum   string          `yaml:"checksum"`
	Statements []planStatement `yaml:"statements"`
}

type planStatement struct {
	catalog.Statement `yaml:",inline"`
	Checksum          string `yaml:"checksum"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	config, err := buildPipelineConfig(cmd)
	if err != nil {
		return err
	}

	cat, err := catalog.New(config.Ingestion, catalog.WithDialect(catalog.Dialect(planFlags.dialect)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch planFlags.format {
	case planFormatText:
		return writeTextPlan(out, cat.All())
	case planFormatYAML:
		return writeYAMLPlan(out, planFlags.dialect, cat.All())
	default:
		return fmt.Errorf("--format must be one of %s, got %q: %w",
			strings.Join(planFormats, "|"), planFlags.format, dwh.ErrInvalidConfig)
	}
}

func writeTextPlan(w io.Writer, statements []catalog.Statement) error {
	if _, err := fmt.Fprintf(w, "-- plan %s\n\n", checksum.Short(catalog.Fingerprint(statements))); err != nil {
		return err
	}
	for i, stmt := range statements {
		if _, err := fmt.Fprintf(w, "-- [%d/%d] %s (%s) %s\n%s;\n\n",
			i+1, len(statements), stmt.Name, stmt.Phase, checksum.Short(checksum.Fingerprint(stmt.SQL)), stmt.SQL); err != nil {
			return err
		}
	}
	return nil
}

func writeYAMLPlan(w io.Writer, dialect string, statements []catalog.Statement) error {
	doc := planDocument{Dialect: dialect, Checksum: catalog.Fingerprint(statements)}
	for _, stmt := range statements {
		doc.Statements = append(doc.Statements, planStatement{Statement: stmt, Checksum: checksum.Fingerprint(stmt.SQL)})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

package dwh

import "context"

// Pipeline runs the two-phase warehouse ETL: bulk-load the staging tables,
// then transform them into the star schema.
type Pipeline interface {
	// Run executes the load phase and then the transform phase over a single
	// connection. When config.Recreate is set, all tables are dropped and
	// recreated first. The connection is released on every exit path.
	Run(ctx context.Context, config PipelineConfig) error

	// Setup drops and recreates every staging, fact and dimension table.
	Setup(ctx context.Context, config PipelineConfig) error
}

// Package services implements the pipeline: it connects to the warehouse,
// runs the load phase (COPY into staging) and then the transform phase
// (INSERT ... SELECT into the star schema), one committed statement at a time.
package services

// Package catalog holds the fixed text of every statement the pipeline sends
// to the warehouse.
//
// Statements come in four groups, always enumerated in this order:
//
//   - Drop:   DROP TABLE IF EXISTS for the two staging and five star-schema tables
//   - Create: CREATE TABLE IF NOT EXISTS for the same seven tables
//   - Copy:   COPY ... FROM 's3://...' for the event log and the song catalog
//   - Insert: INSERT ... SELECT DISTINCT from staging into the fact and dimension tables
//
// External values (S3 locations, the access role, the JSONPaths descriptor) are
// substituted once, when the Catalog is built. A Catalog is immutable afterwards.
package catalog

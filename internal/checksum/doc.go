// Package checksum fingerprints rendered SQL statements.
//
// A fingerprint is the SHA-256 of a statement after SQL comments are removed
// and whitespace runs are collapsed. Case is preserved: string literals carry
// S3 keys and role ARNs, which are case-sensitive.
//
// Two plans with equal fingerprints send the same statements to the
// warehouse, whatever their formatting.
package checksum

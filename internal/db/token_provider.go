package db

import (
	"context"
	"time"
)

// Credentials is a temporary database login issued by a cloud provider.
type Credentials struct {
	// Username replaces the configured user when set. Redshift issues
	// credentials for a prefixed user, e.g. "IAM:awsuser".
	Username  string
	Password  string
	ExpiresOn time.Time
}

// CredentialProvider abstracts cloud acquisition of temporary database credentials.
type CredentialProvider interface {
	GetCredentials(ctx context.Context) (Credentials, error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets.
	String() string
}

package dwh

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PipelineConfig contains everything a pipeline run needs.
type PipelineConfig struct {
	// Connection holds the cluster group: where and as whom to connect.
	Connection ConnectionConfig

	// Ingestion holds the external-storage locations and the COPY access role.
	Ingestion IngestionConfig

	// Recreate drops and recreates every table before loading.
	Recreate bool

	// Force bypasses interactive approval when used with Recreate.
	Force bool

	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks the cluster group and run options. Ingestion values are
// validated when the statement catalog is built.
// It returns a multi-error if multiple validation failures occur.
func (c *PipelineConfig) Validate() error {
	var errs []error

	if err := c.Connection.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents the warehouse connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// ClusterID names the Redshift cluster for AuthMethodAWSIAM. When empty
	// it is taken from the first label of Host.
	ClusterID string

	AppName string

	// ConnectTimeout bounds the TCP connect and login; zero means no bound.
	ConnectTimeout time.Duration
}

// Validate reports every missing or malformed cluster key.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("CLUSTER.HOST is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("CLUSTER.DB_NAME is required: %w", ErrInvalidConfig))
	}
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("CLUSTER.DB_USER is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("CLUSTER.DB_PORT must be between 1 and 65535, got %d: %w", c.Port, ErrInvalidConfig))
	}

	switch c.AuthMethod {
	case AuthMethodStandard:
		if c.Password == "" {
			errs = append(errs, fmt.Errorf("CLUSTER.DB_PASSWORD is required (or set $PGPASSWORD): %w", ErrInvalidConfig))
		}
	case AuthMethodAWSIAM:
		if c.AWSRegion == "" {
			errs = append(errs, fmt.Errorf("CLUSTER.AWS_REGION is required for aws-iam authentication: %w", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// IngestionConfig holds the values substituted into the bulk-copy statements.
type IngestionConfig struct {
	// LogData is the S3 location of the event log files.
	LogData string

	// LogJSONPath is the JSONPaths descriptor for the event log ('auto' or an S3 path).
	LogJSONPath string

	// SongData is the S3 location of the song catalog files.
	SongData string

	// RoleARN is the IAM role the warehouse assumes to read S3, or "default".
	RoleARN string

	// Region is the bucket region, when it differs from the cluster's.
	Region string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                     // AWS IAM database authentication token
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "standard"
	case AuthMethodAWSIAM:
		return "aws-iam"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAWSIAM
}

// ParseAuthMethod parses the CLUSTER.AUTH_METHOD value. Empty means standard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws-iam", "aws_iam", "iam":
		return AuthMethodAWSIAM, nil
	default:
		return 0, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

package dwh

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Pipeline completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the warehouse
	ExitApprovalDenied  = 12 // Operator denied drop/recreate approval
	ExitExecutionFailed = 13 // Statement execution failed
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// MaxErrorPreviewLength is the maximum number of characters of a failed
	// statement quoted back in error messages.
	MaxErrorPreviewLength = 200

	// DefaultConfigFile is the INI file read when --config is not given.
	DefaultConfigFile = "dwh.cfg"

	// DefaultSSLMode is used when the cluster group does not set SSLMODE.
	DefaultSSLMode = "prefer"

	// ApplicationName is reported to the warehouse as application_name.
	ApplicationName = "sparkify-dwh"
)

package dwh

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes of a pipeline run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	err := pipeline.Run(ctx, config)
//	if errors.Is(err, dwh.ErrExecutionFailed) {
//	    // a statement failed; earlier statements stay committed
//	}
var (
	// ErrInvalidConfig indicates missing or malformed configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrApprovalDenied indicates the operator denied dropping the tables.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates a statement failed in the warehouse.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates the warehouse could not be reached or rejected the credentials.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"invalid argument",
		"required flag",
	} {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

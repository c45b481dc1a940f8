package contract

import "errors"

// Sentinel errors shared by core and the CLI. Callers match them with errors.Is.
var (
	// ErrPermissionDenied is returned when a non-admin changes the featured list.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidMethod is returned for a forecast method outside the supported set.
	ErrInvalidMethod = errors.New("invalid forecast method")

	// ErrInvalidWindow is returned for a trending window outside 1, 7 or 30 days.
	ErrInvalidWindow = errors.New("invalid trending window")
)

// ExitCode maps an error to the process exit code used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPermissionDenied):
		return 3
	case errors.Is(err, ErrNotFound):
		return 4
	default:
		return 1
	}
}

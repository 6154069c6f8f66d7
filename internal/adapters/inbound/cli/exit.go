package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Process exit codes.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitFatal = 2
)

// ExitError carries a specific exit code out of a command. Err may be nil
// when the command already reported its outcome.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitPass
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}

// exitCodeFor maps a run status onto the process exit code.
func exitCodeFor(status domain.RunStatus) int {
	switch status {
	case domain.StatusPass:
		return ExitPass
	case domain.StatusWarn, domain.StatusFail:
		return ExitFail
	default:
		return ExitFatal
	}
}

func reportError(w io.Writer, err error) int {
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Err == nil) {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return ExitCode(err)
}

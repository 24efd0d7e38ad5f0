package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/odysseus0/aidigest/internal/config"
	"github.com/odysseus0/aidigest/internal/pipeline"
)

const (
	exitInvalidInput = 2
	exitNoContent    = 3
	exitInternal     = 1
)

func ErrorExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrMissingCredential):
		return exitInvalidInput
	case errors.Is(err, pipeline.ErrNoContent):
		return exitNoContent
	default:
		if isUsageError(err) {
			return exitInvalidInput
		}
		return exitInternal
	}
}

func FormatError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return fmt.Sprintf("Error [invalid-config]: %v", err)
	case errors.Is(err, config.ErrMissingCredential):
		return fmt.Sprintf("Error [missing-credential]: %v", err)
	case errors.Is(err, pipeline.ErrNoContent):
		return fmt.Sprintf("Error [no-content]: %v", err)
	default:
		if isUsageError(err) {
			return fmt.Sprintf("Error [invalid-input]: %v", err)
		}
		return fmt.Sprintf("Error [internal]: %v", err)
	}
}

func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, FormatError(err))
}

// isUsageError recognizes flag and argument errors, which cobra reports as
// plain strings.
func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"invalid output format", "invalid log", "unknown flag", "unknown command", "unknown shorthand flag", "accepts ", "invalid argument"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/sirr/internal/logger"
)

// Hinter is implemented by errors that carry an actionable suggestion for the user,
// such as which setting to change to fix a permission gap.
type Hinter interface {
	Hint() string
}

// HintError wraps an error with a user-facing hint.
type HintError struct {
	Err     error
	Message string
}

func (e *HintError) Error() string { return e.Err.Error() }
func (e *HintError) Unwrap() error { return e.Err }
func (e *HintError) Hint() string  { return e.Message }

// WithHint attaches a hint to err. A nil err stays nil.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &HintError{Err: err, Message: hint}
}

// Format formats an error message with a consistent "Error: " prefix.
// If any error in the chain carries a hint it is printed on a second line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	var h Hinter
	if stderrors.As(err, &h) && h.Hint() != "" {
		msg += "\n  Hint: " + h.Hint()
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

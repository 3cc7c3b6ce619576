package cli

import (
	"errors"
	"fmt"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/piwi3910/cargoplan/internal/project"
)

// ExitCode is the process exit status of a command.
type ExitCode int

const (
	ExitSuccess ExitCode = 0
	// ExitGeneralError covers I/O failures and anything not caused by the input.
	ExitGeneralError ExitCode = 1
	// ExitInvalidInput means the cargo, container or flags could not be used.
	ExitInvalidInput ExitCode = 2
)

// CLIError carries the exit code a failed command should end the process with.
type CLIError struct {
	Code    ExitCode
	Message string
	Err     error
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError without an underlying cause.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError around err.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// inputError wraps err as invalid input when it stems from a bad container
// or manifest, and as a general error otherwise.
func inputError(message string, err error) *CLIError {
	if errors.Is(err, model.ErrInvalidContainer) || errors.Is(err, project.ErrNoContainer) {
		return WrapCLIError(ExitInvalidInput, message, err)
	}
	return WrapCLIError(ExitGeneralError, message, err)
}

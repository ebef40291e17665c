package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/glaze/internal/umf"
)

// CommandError reports a command the reducer refused. State is unchanged
// when a command fails.
type CommandError struct {
	// Code identifies the error category.
	Code CommandErrorCode

	// Command is the kind of the refused command.
	Command CommandKind

	// RowID is the affected row, if any.
	RowID int

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// CommandErrorCode categorizes refused commands.
type CommandErrorCode string

const (
	// ErrCodeOxideInUse indicates the oxide is selected on another row.
	ErrCodeOxideInUse CommandErrorCode = "OXIDE_IN_USE"

	// ErrCodeUnknownRow indicates the row does not exist.
	ErrCodeUnknownRow CommandErrorCode = "UNKNOWN_ROW"

	// ErrCodeFixedLayout indicates a structural edit in the fixed layout.
	ErrCodeFixedLayout CommandErrorCode = "FIXED_LAYOUT"

	// ErrCodeInvalidCommand indicates malformed command data.
	ErrCodeInvalidCommand CommandErrorCode = "INVALID_COMMAND"

	// ErrCodeUnsupported indicates a capability switched off in Options.
	ErrCodeUnsupported CommandErrorCode = "UNSUPPORTED"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.RowID != 0 {
		return fmt.Sprintf("%s: %s (command=%s, row=%d)", e.Code, e.Message, e.Command, e.RowID)
	}
	return fmt.Sprintf("%s: %s (command=%s)", e.Code, e.Message, e.Command)
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error { return e.Err }

// IsOxideInUse returns true if the error is an exclusivity violation.
// Uses errors.As to handle wrapped errors.
func IsOxideInUse(err error) bool {
	return hasCode(err, ErrCodeOxideInUse)
}

// IsUnknownRow returns true if the error names a missing row.
func IsUnknownRow(err error) bool {
	return hasCode(err, ErrCodeUnknownRow)
}

func hasCode(err error, code CommandErrorCode) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// commandError maps row-level errors onto codes.
func commandError(cmd Command, err error) error {
	if err == nil {
		return nil
	}
	code := ErrCodeInvalidCommand
	switch {
	case errors.Is(err, umf.ErrOxideInUse):
		code = ErrCodeOxideInUse
	case errors.Is(err, umf.ErrUnknownRow):
		code = ErrCodeUnknownRow
	case errors.Is(err, umf.ErrFixedLayout):
		code = ErrCodeFixedLayout
	}
	return &CommandError{Code: code, Command: cmd.Kind, RowID: cmd.RowID, Message: err.Error(), Err: err}
}

// ErrStopped is returned by Do when the engine no longer accepts events.
var ErrStopped = errors.New("engine stopped")

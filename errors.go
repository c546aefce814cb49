package zergmgr

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by process lifecycle operations. All of them are
// expected, recoverable conditions; none indicates a crash.
var (
	// ErrNotRunning indicates no process is answering on the statistics socket
	ErrNotRunning = errors.New("zergmgr: process not running")

	// ErrAlreadyRunning indicates the process is already up (or already
	// mid-startup) and the requested transition would be a no-op
	ErrAlreadyRunning = errors.New("zergmgr: process already running")

	// ErrAlreadyPaused indicates the worker is already paused
	ErrAlreadyPaused = errors.New("zergmgr: worker already paused")

	// ErrAlreadyReloading indicates a reload handoff is already in progress
	ErrAlreadyReloading = errors.New("zergmgr: worker already reloading")

	// ErrNoSuchZergling indicates a name lookup miss within an overlord's config
	ErrNoSuchZergling = errors.New("zergmgr: no such zergling")
)

// OpError represents an error from a lifecycle operation
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// Path is the file path involved in the operation
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("zergmgr %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// ParseError indicates malformed config-document text
type ParseError struct {
	// Line is the 1-based line number of the offending line
	Line int
	// Msg describes what is wrong with the line
	Msg string
}

// Error returns a formatted error message
func (e *ParseError) Error() string {
	return fmt.Sprintf("zergmgr: config line %d: %s", e.Line, e.Msg)
}

// LaunchError indicates the external process exited non-zero during Start
type LaunchError struct {
	// Cmd is the command line that was launched
	Cmd []string
	// Stderr is the captured stderr of the failed launch, empty unless the
	// process was started quietly
	Stderr string
	// Err is the underlying exec error
	Err error
}

// Error returns a formatted error message including any captured stderr
func (e *LaunchError) Error() string {
	msg := fmt.Sprintf("zergmgr: launching %s: %v", strings.Join(e.Cmd, " "), e.Err)
	if e.Stderr != "" {
		msg += ":\n  " + strings.ReplaceAll(strings.TrimRight(e.Stderr, "\n"), "\n", "\n  ")
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

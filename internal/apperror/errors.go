package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for every way an invocation can fail.
var (
	ErrInvalidTicketFormat = errors.New("invalid ticket format")
	ErrNoBaseBranch        = errors.New("no base branch found")
	ErrRangeResolution     = errors.New("commit range resolution failed")
	ErrDirtyWorkingTree    = errors.New("working tree has uncommitted changes")
	ErrUnpushedSafety      = errors.New("branch has a remote counterpart")
	ErrRewriteFailed       = errors.New("history rewrite failed")
	ErrConfigTemplate      = errors.New("invalid message format")
	ErrConfig              = errors.New("invalid configuration")
	ErrNotConfirmed        = errors.New("rewrite not confirmed")
	ErrHookRejected        = errors.New("rejected by hook")
	ErrUsage               = errors.New("usage error")
)

// Exit codes returned by the binary.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// AppError is a structured error with a user-facing message and exit code.
type AppError struct {
	Err      error
	Message  string
	Hint     string
	ExitCode int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, format string, args ...interface{}) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: ExitFailure,
	}
}

// InvalidTicket creates an error for a ticket that does not have the expected shape.
func InvalidTicket(format string, args ...interface{}) *AppError {
	return newError(ErrInvalidTicketFormat, format, args...)
}

// DirtyTree creates the error reported when the working tree is not clean.
func DirtyTree() *AppError {
	e := newError(ErrDirtyWorkingTree, "working tree has uncommitted changes")
	e.Hint = "commit or stash your changes first"
	return e
}

// UnpushedSafety creates the error reported when a tracked branch is rewritten without --force.
func UnpushedSafety(branch string) *AppError {
	e := newError(ErrUnpushedSafety, "branch %q has a remote counterpart; rewriting it requires --force", branch)
	e.Hint = "after rewriting you will need to force-push"
	return e
}

// RewriteFailed wraps a failure from the rewrite step.
func RewriteFailed(err error) *AppError {
	e := &AppError{
		Err:      fmt.Errorf("%w: %w", ErrRewriteFailed, err),
		Message:  "history rewrite failed: " + err.Error(),
		ExitCode: ExitFailure,
	}
	e.Hint = "inspect `git reflog` and `git reset --hard <previous head>` to recover"
	return e
}

// ConfigTemplate creates an error for a bad message format template.
func ConfigTemplate(format string, args ...interface{}) *AppError {
	return newError(ErrConfigTemplate, format, args...)
}

// Config creates a generic configuration error.
func Config(format string, args ...interface{}) *AppError {
	e := newError(ErrConfig, format, args...)
	e.ExitCode = ExitUsage
	return e
}

// Usage marks err as a command line usage error.
func Usage(format string, args ...interface{}) *AppError {
	e := newError(ErrUsage, format, args...)
	e.ExitCode = ExitUsage
	return e
}

// NotConfirmed is returned when the user declines the rewrite.
func NotConfirmed() *AppError {
	return newError(ErrNotConfirmed, "aborted, no changes made")
}

// HookRejected creates the error a hook returns to block a commit or push.
func HookRejected(format string, args ...interface{}) *AppError {
	return newError(ErrHookRejected, format, args...)
}

// ExitCode extracts the process exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	if errors.Is(err, ErrConfig) {
		return ExitUsage
	}
	return ExitFailure
}

// HintFor returns the recovery hint attached to an error, if any.
func HintFor(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Hint
	}
	return ""
}

// Package errs defines the error types that cross component boundaries.
package errs

import (
	"fmt"
	"strings"
)

// FailureReason classifies a terminal agent-execution failure.
type FailureReason string

const (
	ReasonAuth      FailureReason = "auth"
	ReasonRateLimit FailureReason = "rate-limit"
	ReasonOther     FailureReason = "other"
)

// Classify inspects an error message for authentication and rate-limit
// markers. Everything else is ReasonOther.
func Classify(err error) FailureReason {
	if err == nil {
		return ReasonOther
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") || strings.Contains(msg, "401"):
		return ReasonAuth
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return ReasonRateLimit
	default:
		return ReasonOther
	}
}

// DefinitionError reports a malformed agent definition file. It is recovered
// locally: the file is skipped and the rest of the catalog still loads.
type DefinitionError struct {
	Path string
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("agent definition %s: %v", e.Path, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// ExecutionError means every candidate agent, including the generic
// fallback, exhausted its retries.
type ExecutionError struct {
	Reason FailureReason
	Err    error
}

func (e *ExecutionError) Error() string {
	switch e.Reason {
	case ReasonAuth:
		return fmt.Sprintf("authentication failed; check that your API key is set (ANTHROPIC_API_KEY or OPENAI_API_KEY): %v", e.Err)
	case ReasonRateLimit:
		return fmt.Sprintf("rate limit exceeded; wait a moment and try again: %v", e.Err)
	default:
		return fmt.Sprintf("all agents failed to execute: %v", e.Err)
	}
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError classifies err and wraps it.
func NewExecutionError(err error) *ExecutionError {
	return &ExecutionError{Reason: Classify(err), Err: err}
}

// CommandError is a handler-level failure, e.g. a missing prerequisite
// artifact. Its message is surfaced verbatim.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s: %s", e.Command, e.Message)
}

// StateLoadError reports an I/O or parse failure on the workflow state file.
type StateLoadError struct {
	Path string
	Err  error
}

func (e *StateLoadError) Error() string {
	return fmt.Sprintf("load state %s: %v", e.Path, e.Err)
}

func (e *StateLoadError) Unwrap() error { return e.Err }

// StateSaveError reports a failure writing the workflow state file.
type StateSaveError struct {
	Path string
	Err  error
}

func (e *StateSaveError) Error() string {
	return fmt.Sprintf("save state %s: %v", e.Path, e.Err)
}

func (e *StateSaveError) Unwrap() error { return e.Err }

// ConfigError is a provider misconfiguration, fatal at startup.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want FailureReason
	}{
		{"authentication failed", ReasonAuth},
		{"invalid API key provided", ReasonAuth},
		{"server returned 401 unauthorized", ReasonAuth},
		{"rate limit exceeded", ReasonRateLimit},
		{"HTTP 429 too many requests", ReasonRateLimit},
		{"connection reset by peer", ReasonOther},
		{"model overloaded", ReasonOther},
	}
	for _, tt := range tests {
		if got := Classify(errors.New(tt.msg)); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
	if got := Classify(nil); got != ReasonOther {
		t.Errorf("Classify(nil) = %q, want %q", got, ReasonOther)
	}
}

func TestExecutionErrorMessages(t *testing.T) {
	authErr := NewExecutionError(errors.New("401 unauthorized"))
	if authErr.Reason != ReasonAuth {
		t.Fatalf("Reason = %q, want %q", authErr.Reason, ReasonAuth)
	}
	if !strings.Contains(authErr.Error(), "API key") {
		t.Errorf("auth message not actionable: %q", authErr.Error())
	}

	rateErr := NewExecutionError(errors.New("rate limit hit"))
	if !strings.Contains(rateErr.Error(), "try again") {
		t.Errorf("rate-limit message not actionable: %q", rateErr.Error())
	}

	otherErr := NewExecutionError(errors.New("boom"))
	if !strings.Contains(otherErr.Error(), "all agents failed") {
		t.Errorf("generic message = %q", otherErr.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := NewExecutionError(inner)
	if !errors.Is(wrapped, inner) {
		t.Error("ExecutionError does not unwrap to inner error")
	}
	var execErr *ExecutionError
	if !errors.As(error(wrapped), &execErr) {
		t.Error("errors.As failed for ExecutionError")
	}
}

// Package executor runs a task prompt through an ordered list of candidate
// agents, retrying each with bounded backoff and falling back to the
// generic agent before giving up.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/llm"
)

// Result pairs the generated text with the agent that actually produced it.
// Selection may have silently fallen back, so callers must not assume the
// first candidate won.
type Result struct {
	Agent   agent.Definition
	Content string
}

// Executor drives the generation capability with retry and fallback.
type Executor struct {
	provider llm.Provider
	catalog  *agent.Catalog
	policy   RetryPolicy
	logger   *slog.Logger

	// OnChunk, when set, switches execution to the provider's streaming
	// variant and receives each text fragment as it arrives.
	OnChunk func(string)
}

// New creates an Executor. A zero policy falls back to DefaultRetryPolicy.
func New(provider llm.Provider, catalog *agent.Catalog, policy RetryPolicy, logger *slog.Logger) *Executor {
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{provider: provider, catalog: catalog, policy: policy, logger: logger}
}

// Execute tries each candidate in order, then the generic agent if it was
// not already among the candidates. Per-candidate failures are absorbed;
// only the final classified failure crosses this boundary.
func (e *Executor) Execute(ctx context.Context, candidates []agent.Definition, taskPrompt string, opts llm.Options) (Result, error) {
	var lastErr error

	for _, cand := range candidates {
		content, err := e.executeAgent(ctx, cand, taskPrompt, opts)
		if err == nil {
			return Result{Agent: cand, Content: content}, nil
		}
		lastErr = err
		e.logger.Warn("agent execution failed, advancing to next candidate", "agent", cand.Name, "error", err)
	}

	if generic, ok := e.catalog.Generic(); ok && !containsAgent(candidates, generic.Name) {
		content, err := e.executeAgent(ctx, generic, taskPrompt, opts)
		if err == nil {
			return Result{Agent: generic, Content: content}, nil
		}
		lastErr = err
		e.logger.Warn("generic fallback failed", "agent", generic.Name, "error", err)
	}

	if lastErr == nil {
		lastErr = errors.New("no agents available")
	}
	return Result{}, errs.NewExecutionError(lastErr)
}

// executeAgent runs the two-message exchange for one agent under the retry
// policy.
func (e *Executor) executeAgent(ctx context.Context, def agent.Definition, taskPrompt string, opts llm.Options) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(def.Prompt),
		schema.UserMessage(taskPrompt),
	}

	content, err := retry(ctx, e.policy, func() (string, error) {
		if e.OnChunk != nil {
			return e.generateStreaming(ctx, messages, opts)
		}
		return e.provider.Generate(ctx, messages, opts)
	})
	if err != nil {
		return "", fmt.Errorf("agent %s execution failed: %w", def.Name, err)
	}
	return content, nil
}

func (e *Executor) generateStreaming(ctx context.Context, messages []*schema.Message, opts llm.Options) (string, error) {
	reader, err := e.provider.Stream(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var sb strings.Builder
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if msg.Content == "" {
			continue
		}
		sb.WriteString(msg.Content)
		e.OnChunk(msg.Content)
	}
	return sb.String(), nil
}

func containsAgent(defs []agent.Definition, name string) bool {
	for _, d := range defs {
		if strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

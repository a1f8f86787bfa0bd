// Package workflow routes spec commands to their handlers: each handler
// gathers prerequisite artifacts, runs the prompt through the executor,
// writes the resulting artifact and records the command in workflow state.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudwego/eino/schema"
	"github.com/spf13/afero"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/executor"
	"github.com/specrunner/specrunner/internal/llm"
	"github.com/specrunner/specrunner/internal/models"
	"github.com/specrunner/specrunner/internal/state"
)

// Artifact filenames written under a feature's spec directory. The
// constitution is project-wide and lives at the workspace root instead.
const (
	constitutionFileName   = "CONSTITUTION.md"
	implementationFileName = "implementation.md"
	analysisFileName       = "analysis.md"
	clarificationsFileName = "clarifications.md"
	checklistFileName      = "checklist.md"
)

// Request carries one command invocation.
type Request struct {
	Command   models.CommandType
	Feature   models.Feature
	UserInput string
	// Agents, when non-empty, overrides capability-based selection with an
	// explicit ordered candidate list.
	Agents []string
	// SessionID, when set, is recorded in the state's context data.
	SessionID string
}

// Response reports what a completed command produced.
type Response struct {
	Command      models.CommandType
	Agent        string
	ArtifactPath string
	Content      string
	Suggestions  string
	State        *models.WorkflowState
}

// Dispatcher executes workflow commands against one workspace.
type Dispatcher struct {
	fs       afero.Fs
	catalog  *agent.Catalog
	exec     *executor.Executor
	provider llm.Provider
	root     string
	opts     llm.Options
	logger   *slog.Logger
}

// New creates a dispatcher. The provider is used directly only for the
// lightweight next-step suggestion call; agent execution goes through exec.
func New(fs afero.Fs, catalog *agent.Catalog, exec *executor.Executor, provider llm.Provider, root string, opts llm.Options, logger *slog.Logger) *Dispatcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		fs:       fs,
		catalog:  catalog,
		exec:     exec,
		provider: provider,
		root:     root,
		opts:     opts,
		logger:   logger,
	}
}

type handlerFunc func(ctx context.Context, req *Request, st *models.WorkflowState) (*Response, error)

// Dispatch loads the feature's workflow state, runs the command's handler
// and persists the updated state. State is only touched after the command's
// artifact is on disk.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	handlers := map[models.CommandType]handlerFunc{
		models.CommandConstitution: d.runConstitution,
		models.CommandSpecify:      d.runSpecify,
		models.CommandClarify:      d.runClarify,
		models.CommandPlan:         d.runPlan,
		models.CommandTasks:        d.runTasks,
		models.CommandImplement:    d.runImplement,
		models.CommandAnalyze:      d.runAnalyze,
		models.CommandChecklist:    d.runChecklist,
	}
	handler, ok := handlers[req.Command]
	if !ok {
		return nil, &errs.CommandError{Command: string(req.Command), Message: "no handler registered"}
	}

	tracker := state.NewTracker(d.fs, req.Feature.SpecDir)
	st, err := tracker.Load(req.Feature.ID)
	if err != nil {
		return nil, err
	}

	resp, err := handler(ctx, req, st)
	if err != nil {
		return nil, err
	}

	if phase, advance := phaseFor(req.Command); advance {
		st.CurrentPhase = phase
	}
	if next, ok := suggestedNext(req.Command); ok {
		st.Suggest(next)
	}
	st.ContextData["last_agent"] = resp.Agent
	if req.SessionID != "" {
		st.ContextData["session_id"] = req.SessionID
	}
	if err := tracker.RecordCommand(st, req.Command); err != nil {
		return nil, err
	}
	resp.State = st
	return resp, nil
}

// State loads the feature's current workflow state without mutating it.
func (d *Dispatcher) State(f models.Feature) (*models.WorkflowState, error) {
	return state.NewTracker(d.fs, f.SpecDir).Load(f.ID)
}

// phaseFor returns the phase a command advances the workflow to. Read-only
// commands (clarify, analyze, checklist) leave the phase alone.
func phaseFor(ct models.CommandType) (models.WorkflowPhase, bool) {
	switch ct {
	case models.CommandConstitution:
		return models.PhaseConstitution, true
	case models.CommandSpecify:
		return models.PhaseSpecify, true
	case models.CommandPlan:
		return models.PhasePlan, true
	case models.CommandTasks:
		return models.PhaseTasks, true
	case models.CommandImplement:
		return models.PhaseImplement, true
	default:
		return "", false
	}
}

// suggestedNext returns the follow-up command recorded in state after a
// phase-advancing command completes.
func suggestedNext(ct models.CommandType) (models.CommandType, bool) {
	switch ct {
	case models.CommandSpecify:
		return models.CommandPlan, true
	case models.CommandPlan:
		return models.CommandTasks, true
	case models.CommandTasks:
		return models.CommandImplement, true
	default:
		return "", false
	}
}

func (d *Dispatcher) runConstitution(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	prompt := buildConstitutionPrompt(req.UserInput)
	return d.generate(ctx, req, prompt, filepath.Join(d.root, constitutionFileName))
}

func (d *Dispatcher) runSpecify(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	if req.UserInput == "" {
		return nil, &errs.CommandError{Command: string(req.Command), Message: "a feature description is required, e.g. /spec.specify user login with email"}
	}
	prompt := buildSpecifyPrompt(req.UserInput)
	return d.generate(ctx, req, prompt, req.Feature.SpecFile())
}

func (d *Dispatcher) runClarify(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	spec, err := d.requireArtifact(req, req.Feature.SpecFile(), models.CommandSpecify)
	if err != nil {
		return nil, err
	}
	prompt := buildClarifyPrompt(spec)
	return d.generate(ctx, req, prompt, filepath.Join(req.Feature.SpecDir, clarificationsFileName))
}

func (d *Dispatcher) runPlan(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	spec, err := d.requireArtifact(req, req.Feature.SpecFile(), models.CommandSpecify)
	if err != nil {
		return nil, err
	}
	prompt := buildPlanPrompt(spec)
	return d.generate(ctx, req, prompt, req.Feature.PlanFile())
}

func (d *Dispatcher) runTasks(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	spec, err := d.requireArtifact(req, req.Feature.SpecFile(), models.CommandSpecify)
	if err != nil {
		return nil, err
	}
	plan, err := d.requireArtifact(req, req.Feature.PlanFile(), models.CommandPlan)
	if err != nil {
		return nil, err
	}
	prompt := buildTasksPrompt(spec, plan)
	return d.generate(ctx, req, prompt, req.Feature.TasksFile())
}

func (d *Dispatcher) runImplement(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	tasks, err := d.requireArtifact(req, req.Feature.TasksFile(), models.CommandTasks)
	if err != nil {
		return nil, err
	}
	contextSections := d.optionalSections([]artifactSource{
		{name: "Specification", path: req.Feature.SpecFile()},
		{name: "Implementation Plan", path: req.Feature.PlanFile()},
	})
	prompt := buildImplementPrompt(contextSections, tasks, req.UserInput)
	return d.generate(ctx, req, prompt, filepath.Join(req.Feature.SpecDir, implementationFileName))
}

func (d *Dispatcher) runAnalyze(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	spec, err := d.requireArtifact(req, req.Feature.SpecFile(), models.CommandSpecify)
	if err != nil {
		return nil, err
	}
	artifacts := []artifactContent{{name: "Specification", content: spec}}
	for _, src := range []artifactSource{
		{name: "Implementation Plan", path: req.Feature.PlanFile()},
		{name: "Tasks", path: req.Feature.TasksFile()},
	} {
		if content, ok := d.readArtifact(src.path); ok {
			artifacts = append(artifacts, artifactContent{name: src.name, content: content})
		}
	}
	prompt := buildAnalyzePrompt(artifacts)
	return d.generate(ctx, req, prompt, filepath.Join(req.Feature.SpecDir, analysisFileName))
}

func (d *Dispatcher) runChecklist(ctx context.Context, req *Request, _ *models.WorkflowState) (*Response, error) {
	if _, err := d.requireArtifact(req, req.Feature.SpecFile(), models.CommandSpecify); err != nil {
		return nil, err
	}
	contextSections := d.optionalSections([]artifactSource{
		{name: "Specification", path: req.Feature.SpecFile()},
		{name: "Implementation Plan", path: req.Feature.PlanFile()},
		{name: "Tasks", path: req.Feature.TasksFile()},
	})
	prompt := buildChecklistPrompt(contextSections, req.UserInput)
	return d.generate(ctx, req, prompt, filepath.Join(req.Feature.SpecDir, checklistFileName))
}

// generate is the shared back half of every handler: pick candidates, run
// the executor, write the artifact, then ask for next-step suggestions.
func (d *Dispatcher) generate(ctx context.Context, req *Request, taskPrompt, artifactPath string) (*Response, error) {
	candidates, err := d.candidates(req)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	d.logger.Info("executing command", "command", req.Command, "candidates", names)

	result, err := d.exec.Execute(ctx, candidates, taskPrompt, d.opts)
	if err != nil {
		return nil, err
	}

	if err := d.writeArtifact(artifactPath, result.Content); err != nil {
		return nil, err
	}

	return &Response{
		Command:      req.Command,
		Agent:        result.Agent.Name,
		ArtifactPath: artifactPath,
		Content:      result.Content,
		Suggestions:  d.suggestions(ctx, req.Command, result.Content),
	}, nil
}

// candidates resolves the ordered agent list: the explicit --agents override
// when given, otherwise the catalog's per-command selection policy.
func (d *Dispatcher) candidates(req *Request) ([]agent.Definition, error) {
	if len(req.Agents) == 0 {
		return d.catalog.SelectForCommand(req.Command), nil
	}
	defs := make([]agent.Definition, 0, len(req.Agents))
	for _, name := range req.Agents {
		def, ok := d.catalog.ByName(name)
		if !ok {
			return nil, &errs.CommandError{Command: string(req.Command), Message: fmt.Sprintf("unknown agent %q; see agents list", name)}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

type artifactSource struct {
	name string
	path string
}

type artifactContent struct {
	name    string
	content string
}

func (d *Dispatcher) requireArtifact(req *Request, path string, producedBy models.CommandType) (string, error) {
	content, ok := d.readArtifact(path)
	if !ok {
		return "", &errs.CommandError{
			Command: string(req.Command),
			Message: fmt.Sprintf("%s not found; run /spec.%s first", filepath.Base(path), producedBy),
		}
	}
	return content, nil
}

func (d *Dispatcher) readArtifact(path string) (string, bool) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// optionalSections concatenates the artifacts that exist as "## name"
// sections, silently skipping the missing ones.
func (d *Dispatcher) optionalSections(sources []artifactSource) string {
	out := ""
	for _, src := range sources {
		if content, ok := d.readArtifact(src.path); ok {
			out += fmt.Sprintf("## %s:\n%s\n\n", src.name, content)
		}
	}
	return out
}

func (d *Dispatcher) writeArtifact(path, content string) error {
	if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := afero.WriteFile(d.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// suggestionsMaxTokens keeps the follow-up call cheap.
const suggestionsMaxTokens = 500

// suggestions asks the provider for 2-4 next steps. Failures are logged and
// swallowed: suggestions are advisory and never fail the command.
func (d *Dispatcher) suggestions(ctx context.Context, ct models.CommandType, content string) string {
	if d.provider == nil {
		return ""
	}
	prompt := buildSuggestionsPrompt(ct, truncate(content, 4000), d.catalog.List(false))
	opts := d.opts
	opts.MaxTokens = suggestionsMaxTokens
	out, err := d.provider.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, opts)
	if err != nil {
		d.logger.Warn("suggestion generation failed", "command", ct, "error", err)
		return ""
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n... (truncated)"
}

package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/spf13/afero"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/executor"
	"github.com/specrunner/specrunner/internal/llm"
	"github.com/specrunner/specrunner/internal/models"
)

// echoProvider answers every generation; the suggestion call is recognized
// by its prompt and answered differently so tests can tell the two apart.
type echoProvider struct{}

func (echoProvider) Name() models.ProviderType { return models.ProviderAnthropic }

func (echoProvider) Generate(_ context.Context, messages []*schema.Message, _ llm.Options) (string, error) {
	last := messages[len(messages)-1].Content
	if strings.HasPrefix(last, "I just completed") {
		return "- run the next workflow command", nil
	}
	return "# Generated\n\nartifact body", nil
}

func (echoProvider) Stream(context.Context, []*schema.Message, llm.Options) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not scripted")
}

var quickPolicy = executor.RetryPolicy{
	MaxAttempts:     2,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	Multiplier:      1.5,
}

func testAgentsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"gena.md": "---\nname: gena\nrole: generic\npriority: 1\n---\nYou are a versatile agent.",
		"archie.md": `---
name: archie
role: architect
capabilities: [architecture_design, component_design]
priority: 10
---
You design systems.`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write agent file: %v", err)
		}
	}
	return dir
}

func newTestDispatcher(t *testing.T) (*Dispatcher, afero.Fs) {
	t.Helper()
	catalog, err := agent.Load(testAgentsDir(t), slog.Default())
	if err != nil {
		t.Fatalf("Load catalog failed: %v", err)
	}
	fs := afero.NewMemMapFs()
	provider := echoProvider{}
	exec := executor.New(provider, catalog, quickPolicy, slog.Default())
	d := New(fs, catalog, exec, provider, "/ws", llm.Options{}, slog.Default())
	return d, fs
}

func testFeature() models.Feature {
	return models.Feature{ID: "001", Name: "login", Branch: "001-login", SpecDir: "/ws/specs/001-login"}
}

func TestSpecifyWritesArtifactAndState(t *testing.T) {
	d, fs := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), &Request{
		Command:   models.CommandSpecify,
		Feature:   testFeature(),
		UserInput: "user login with email",
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if resp.ArtifactPath != "/ws/specs/001-login/spec.md" {
		t.Errorf("ArtifactPath = %q", resp.ArtifactPath)
	}
	data, err := afero.ReadFile(fs, resp.ArtifactPath)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != resp.Content {
		t.Error("artifact content differs from response content")
	}
	if resp.Agent != "gena" {
		t.Errorf("Agent = %q, want generic gena for specify", resp.Agent)
	}
	if resp.Suggestions == "" {
		t.Error("suggestions missing")
	}

	st := resp.State
	if st.CurrentPhase != models.PhaseSpecify {
		t.Errorf("CurrentPhase = %q, want %q", st.CurrentPhase, models.PhaseSpecify)
	}
	if len(st.CompletedCommands) != 1 || st.CompletedCommands[0].Command != models.CommandSpecify {
		t.Errorf("history = %v, want [specify]", st.CompletedCommands)
	}
	if st.SuggestedNext == nil || *st.SuggestedNext != models.CommandPlan {
		t.Errorf("SuggestedNext = %v, want plan", st.SuggestedNext)
	}
	if st.ContextData["last_agent"] != "gena" {
		t.Errorf("context_data[last_agent] = %v", st.ContextData["last_agent"])
	}
	if st.ContextData["session_id"] != "sess-1" {
		t.Errorf("context_data[session_id] = %v", st.ContextData["session_id"])
	}
}

func TestSpecifyRequiresDescription(t *testing.T) {
	d, _ := newTestDispatcher(t)
	_, err := d.Dispatch(context.Background(), &Request{Command: models.CommandSpecify, Feature: testFeature()})
	var cmdErr *errs.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *errs.CommandError", err)
	}
}

func TestPlanRequiresSpec(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), &Request{Command: models.CommandPlan, Feature: testFeature()})
	var cmdErr *errs.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *errs.CommandError", err)
	}
	if !strings.Contains(cmdErr.Error(), "/spec.specify") {
		t.Errorf("error = %q, want pointer to /spec.specify", cmdErr.Error())
	}

	// a failed command leaves no trace in state
	st, err := d.State(testFeature())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if len(st.CompletedCommands) != 0 {
		t.Errorf("failed command recorded in history: %v", st.CompletedCommands)
	}
}

func TestWorkflowScenario(t *testing.T) {
	d, fs := newTestDispatcher(t)
	ctx := context.Background()
	f := testFeature()

	dispatch := func(ct models.CommandType, input string) *Response {
		t.Helper()
		resp, err := d.Dispatch(ctx, &Request{Command: ct, Feature: f, UserInput: input})
		if err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", ct, err)
		}
		return resp
	}

	dispatch(models.CommandSpecify, "user login with email")

	resp := dispatch(models.CommandPlan, "")
	if resp.Agent != "archie" {
		t.Errorf("plan Agent = %q, want archie (exact capability match)", resp.Agent)
	}
	st := resp.State
	if st.CurrentPhase != models.PhasePlan {
		t.Errorf("after plan: CurrentPhase = %q, want plan", st.CurrentPhase)
	}
	if len(st.CompletedCommands) != 2 {
		t.Errorf("after plan: history length = %d, want 2", len(st.CompletedCommands))
	}
	if st.SuggestedNext == nil || *st.SuggestedNext != models.CommandTasks {
		t.Errorf("after plan: SuggestedNext = %v, want tasks", st.SuggestedNext)
	}

	// clarify is read-only with respect to phase and suggestion
	resp = dispatch(models.CommandClarify, "")
	st = resp.State
	if st.CurrentPhase != models.PhasePlan {
		t.Errorf("after clarify: CurrentPhase = %q, want plan", st.CurrentPhase)
	}
	if st.SuggestedNext == nil || *st.SuggestedNext != models.CommandTasks {
		t.Errorf("after clarify: SuggestedNext = %v, want tasks", st.SuggestedNext)
	}
	if len(st.CompletedCommands) != 3 {
		t.Errorf("after clarify: history length = %d, want 3", len(st.CompletedCommands))
	}
	if ok, _ := afero.Exists(fs, "/ws/specs/001-login/clarifications.md"); !ok {
		t.Error("clarifications.md not written")
	}

	dispatch(models.CommandTasks, "")
	resp = dispatch(models.CommandImplement, "T001")
	if resp.State.CurrentPhase != models.PhaseImplement {
		t.Errorf("after implement: CurrentPhase = %q, want implement", resp.State.CurrentPhase)
	}
	if ok, _ := afero.Exists(fs, "/ws/specs/001-login/implementation.md"); !ok {
		t.Error("implementation.md not written")
	}

	dispatch(models.CommandAnalyze, "")
	dispatch(models.CommandChecklist, "")
	for _, name := range []string{"analysis.md", "checklist.md"} {
		if ok, _ := afero.Exists(fs, "/ws/specs/001-login/"+name); !ok {
			t.Errorf("%s not written", name)
		}
	}
}

func TestTasksRequiresPlan(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()
	f := testFeature()

	if _, err := d.Dispatch(ctx, &Request{Command: models.CommandSpecify, Feature: f, UserInput: "login"}); err != nil {
		t.Fatalf("specify failed: %v", err)
	}
	_, err := d.Dispatch(ctx, &Request{Command: models.CommandTasks, Feature: f})
	if err == nil || !strings.Contains(err.Error(), "/spec.plan") {
		t.Errorf("error = %v, want pointer to /spec.plan", err)
	}
}

func TestConstitutionWritesToWorkspaceRoot(t *testing.T) {
	d, fs := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), &Request{
		Command:   models.CommandConstitution,
		Feature:   testFeature(),
		UserInput: "quality first",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if resp.ArtifactPath != "/ws/CONSTITUTION.md" {
		t.Errorf("ArtifactPath = %q, want /ws/CONSTITUTION.md", resp.ArtifactPath)
	}
	if ok, _ := afero.Exists(fs, "/ws/CONSTITUTION.md"); !ok {
		t.Error("CONSTITUTION.md not written")
	}
	st := resp.State
	if st.CurrentPhase != models.PhaseConstitution {
		t.Errorf("CurrentPhase = %q, want constitution", st.CurrentPhase)
	}
	if st.SuggestedNext != nil {
		t.Errorf("SuggestedNext = %v, want nil (constitution preserves it)", *st.SuggestedNext)
	}
}

func TestAgentOverride(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), &Request{
		Command:   models.CommandSpecify,
		Feature:   testFeature(),
		UserInput: "login",
		Agents:    []string{"archie"},
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if resp.Agent != "archie" {
		t.Errorf("Agent = %q, want override archie", resp.Agent)
	}
}

func TestAgentOverrideUnknown(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), &Request{
		Command:   models.CommandSpecify,
		Feature:   testFeature(),
		UserInput: "login",
		Agents:    []string{"ghost"},
	})
	var cmdErr *errs.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *errs.CommandError", err)
	}
	if !strings.Contains(cmdErr.Error(), "ghost") {
		t.Errorf("error = %q, want mention of the unknown agent", cmdErr.Error())
	}
}

package workflow

import (
	"strings"
	"testing"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/models"
)

func TestPromptsCarryInputs(t *testing.T) {
	if got := buildSpecifyPrompt("user login"); !strings.Contains(got, "user login") {
		t.Error("specify prompt missing feature description")
	}

	got := buildTasksPrompt("THE SPEC", "THE PLAN")
	if !strings.Contains(got, "THE SPEC") || !strings.Contains(got, "THE PLAN") {
		t.Error("tasks prompt missing an artifact")
	}

	got = buildImplementPrompt("CONTEXT", "THE TASKS", "T001 only")
	for _, want := range []string{"CONTEXT", "THE TASKS", "Focus on: T001 only"} {
		if !strings.Contains(got, want) {
			t.Errorf("implement prompt missing %q", want)
		}
	}
	if strings.Contains(buildImplementPrompt("", "tasks", ""), "Focus on:") {
		t.Error("implement prompt has a focus line without user input")
	}
}

func TestAnalyzePromptSections(t *testing.T) {
	got := buildAnalyzePrompt([]artifactContent{
		{name: "Specification", content: "S"},
		{name: "Tasks", content: "T"},
	})
	if !strings.Contains(got, "## Specification") || !strings.Contains(got, "## Tasks") {
		t.Errorf("analyze prompt missing artifact sections:\n%s", got)
	}
}

func TestSuggestionsPromptListsAgents(t *testing.T) {
	agents := []agent.Definition{
		{Name: "archie", Specialization: "System architecture"},
		{Name: "quincy", Specialization: "Quality assurance"},
	}
	got := buildSuggestionsPrompt(models.CommandPlan, "plan body", agents)
	for _, want := range []string{"plan body", "archie", "quincy", "/spec.tasks"} {
		if !strings.Contains(got, want) {
			t.Errorf("suggestions prompt missing %q", want)
		}
	}
}

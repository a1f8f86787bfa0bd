package agent

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specrunner/specrunner/internal/models"
)

func writeAgent(t *testing.T, dir, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("write agent file %s: %v", file, err)
	}
}

// testCatalog loads a catalog with one generic agent plus two plan
// specialists: archie declares exactly the plan capabilities, fullstack a
// superset at higher priority.
func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	writeAgent(t, dir, "gena.md", `---
name: gena
role: generic
priority: 1
---
You are a versatile software agent.`)
	writeAgent(t, dir, "archie.md", archieDef)
	writeAgent(t, dir, "fullstack.md", `---
name: fullstack
role: engineer
capabilities:
  - architecture_design
  - component_design
  - backend_implementation
  - frontend_implementation
priority: 12
---
You build everything.`)

	c, err := Load(dir, slog.Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c
}

func TestCapabilityTableCoversAllCommands(t *testing.T) {
	for _, ct := range models.AllCommands {
		if _, ok := commandCapabilities[ct]; !ok {
			t.Errorf("commandCapabilities missing entry for %q", ct)
		}
	}
	if len(commandCapabilities) != len(models.AllCommands) {
		t.Errorf("commandCapabilities has %d entries, want %d", len(commandCapabilities), len(models.AllCommands))
	}
}

func TestLoadSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeAgent(t, dir, "good.md", "---\nname: good\nrole: generic\n---\nprompt")
	writeAgent(t, dir, "bad.md", "no frontmatter at all")

	c, err := Load(dir, slog.Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(c.List(true)); got != 1 {
		t.Errorf("loaded %d agents, want 1", got)
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), slog.Default()); err == nil {
		t.Error("expected error for missing agents directory")
	}
}

func TestExactMatchOutranksHigherPriority(t *testing.T) {
	c := testCatalog(t)
	required := RequiredCapabilities(models.CommandPlan)

	got := c.SelectMany(required, DefaultSelectionLimit)
	if len(got) != 2 {
		t.Fatalf("SelectMany returned %d agents, want 2", len(got))
	}
	// archie: priority 10 + exact bonus 5 = 15; fullstack: priority 12 superset = 12
	if got[0].Name != "archie" {
		t.Errorf("top agent = %q, want %q", got[0].Name, "archie")
	}
	if got[1].Name != "fullstack" {
		t.Errorf("second agent = %q, want %q", got[1].Name, "fullstack")
	}
}

func TestSelectForCommandEmptyRequirements(t *testing.T) {
	c := testCatalog(t)
	got := c.SelectForCommand(models.CommandSpecify)
	if len(got) != 1 || got[0].Name != "gena" {
		t.Errorf("SelectForCommand(specify) = %v, want [gena]", names(got))
	}
}

func TestSelectForCommandFallsBackToGeneric(t *testing.T) {
	dir := t.TempDir()
	writeAgent(t, dir, "gena.md", "---\nname: gena\nrole: generic\n---\nprompt")
	c, err := Load(dir, slog.Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := c.SelectForCommand(models.CommandPlan)
	if len(got) != 1 || got[0].Name != "gena" {
		t.Errorf("SelectForCommand(plan) with no specialists = %v, want [gena]", names(got))
	}
}

func TestDisableOverlay(t *testing.T) {
	c := testCatalog(t)
	if !c.Disable("ARCHIE") { // case-insensitive
		t.Fatal("Disable(ARCHIE) reported unknown agent")
	}

	// ranked selection excludes disabled agents
	got := c.SelectMany(RequiredCapabilities(models.CommandPlan), DefaultSelectionLimit)
	if len(got) != 1 || got[0].Name != "fullstack" {
		t.Errorf("SelectMany after disable = %v, want [fullstack]", names(got))
	}

	// explicit selection still sees disabled agents
	if one, ok := c.SelectOne(RequiredCapabilities(models.CommandPlan)); !ok || one.Name != "archie" {
		t.Errorf("SelectOne after disable = %q, want archie", one.Name)
	}
	if _, ok := c.ByName("archie"); !ok {
		t.Error("ByName should find disabled agents")
	}

	// reload preserves the overlay
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if c.Enabled("archie") {
		t.Error("Reload re-enabled a disabled agent")
	}

	if !c.Enable("archie") {
		t.Fatal("Enable(archie) reported unknown agent")
	}
	if !c.Enabled("archie") {
		t.Error("agent still disabled after Enable")
	}
}

func TestEnableUnknownAgent(t *testing.T) {
	c := testCatalog(t)
	if c.Enable("ghost") {
		t.Error("Enable(ghost) should report unknown agent")
	}
	if c.Disable("ghost") {
		t.Error("Disable(ghost) should report unknown agent")
	}
}

func TestGenericIgnoresOverlay(t *testing.T) {
	c := testCatalog(t)
	c.Disable("gena")
	if g, ok := c.Generic(); !ok || g.Name != "gena" {
		t.Errorf("Generic() after disable = %q, %v; want gena, true", g.Name, ok)
	}
}

func names(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

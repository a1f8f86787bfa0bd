package agent

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specrunner/specrunner/internal/models"
)

// DefaultSelectionLimit bounds how many agents SelectMany returns.
const DefaultSelectionLimit = 3

// commandCapabilities maps each workflow command to the capability tags an
// agent must declare to handle it. An empty set routes to the generic agent.
// catalog_test.go asserts this table covers every CommandType.
var commandCapabilities = map[models.CommandType][]string{
	models.CommandConstitution: {"project_management"},
	models.CommandSpecify:      {},
	models.CommandClarify:      {},
	models.CommandPlan:         {"architecture_design", "component_design"},
	models.CommandTasks:        {"project_management", "task_breakdown"},
	models.CommandImplement:    {"backend_implementation", "frontend_implementation"},
	models.CommandAnalyze:      {"code_quality", "code_review"},
	models.CommandChecklist:    {"quality_assurance", "testing"},
}

// RequiredCapabilities returns the static capability set for a command.
func RequiredCapabilities(ct models.CommandType) []string {
	return commandCapabilities[ct]
}

// Catalog holds the loaded agent definitions plus a session-scoped overlay
// of disabled agent names. The definitions themselves are never mutated;
// the overlay resets every session and is not persisted.
type Catalog struct {
	mu       sync.RWMutex
	dir      string
	defs     []Definition
	disabled map[string]struct{}
	logger   *slog.Logger
}

// Load scans dir (non-recursive) for *.md agent definitions. A malformed
// definition is logged and skipped; only a missing or unreadable directory
// fails the load.
func Load(dir string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		dir:      dir,
		disabled: make(map[string]struct{}),
		logger:   logger,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-scans the agents directory. The disabled overlay is preserved
// so a session refresh does not silently re-enable agents.
func (c *Catalog) Reload() error {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.md"))
	if err != nil {
		return fmt.Errorf("scan agents directory %s: %w", c.dir, err)
	}
	if paths == nil {
		return fmt.Errorf("agents directory not found or empty: %s", c.dir)
	}
	sort.Strings(paths)

	defs := make([]Definition, 0, len(paths))
	for _, p := range paths {
		d, err := ParseDefinitionFile(p)
		if err != nil {
			c.logger.Warn("skipping malformed agent definition", "path", p, "error", err)
			continue
		}
		defs = append(defs, d)
	}

	c.mu.Lock()
	c.defs = defs
	c.mu.Unlock()
	return nil
}

// List returns the loaded definitions, excluding session-disabled agents
// unless includeDisabled is set.
func (c *Catalog) List(includeDisabled bool) []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		if !includeDisabled && c.isDisabledLocked(d.Name) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ByName looks up an agent case-insensitively, disabled agents included.
func (c *Catalog) ByName(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.defs {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Definition{}, false
}

// Generic returns the first agent with the generic role, ignoring the
// disabled overlay. With several generic agents the first in load order
// wins.
func (c *Catalog) Generic() (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.defs {
		if d.Role == RoleGeneric {
			return d, true
		}
	}
	return Definition{}, false
}

// Enable removes an agent from the session disabled overlay. It reports
// whether the agent exists.
func (c *Catalog) Enable(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.byNameLocked(name)
	if !ok {
		return false
	}
	delete(c.disabled, strings.ToLower(d.Name))
	return true
}

// Disable adds an agent to the session disabled overlay. It reports whether
// the agent exists.
func (c *Catalog) Disable(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.byNameLocked(name)
	if !ok {
		return false
	}
	c.disabled[strings.ToLower(d.Name)] = struct{}{}
	return true
}

// Enabled reports whether an agent is currently enabled for ranking.
func (c *Catalog) Enabled(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.isDisabledLocked(name)
}

// SelectOne ranks every loaded agent, disabled ones included, and returns
// the best match. Explicit lookup is allowed to target disabled agents;
// automatic per-command ranking is not.
func (c *Catalog) SelectOne(required []string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ranked := rank(c.defs, required)
	if len(ranked) == 0 {
		return Definition{}, false
	}
	return ranked[0], true
}

// SelectMany ranks enabled agents only and returns at most limit of them.
// A non-positive limit falls back to DefaultSelectionLimit.
func (c *Catalog) SelectMany(required []string, limit int) []Definition {
	if limit <= 0 {
		limit = DefaultSelectionLimit
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	pool := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		if c.isDisabledLocked(d.Name) {
			continue
		}
		pool = append(pool, d)
	}
	ranked := rank(pool, required)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// SelectForCommand applies the default agent-selection policy for a
// command: generic for commands with no capability requirements, otherwise
// the ranked specialists with generic as a last resort. Callers with an
// explicit user override bypass this entirely.
func (c *Catalog) SelectForCommand(ct models.CommandType) []Definition {
	required := RequiredCapabilities(ct)
	if len(required) == 0 {
		if g, ok := c.Generic(); ok {
			return []Definition{g}
		}
		return nil
	}
	agents := c.SelectMany(required, DefaultSelectionLimit)
	if len(agents) == 0 {
		if g, ok := c.Generic(); ok {
			return []Definition{g}
		}
	}
	return agents
}

func (c *Catalog) byNameLocked(name string) (Definition, bool) {
	for _, d := range c.defs {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Definition{}, false
}

func (c *Catalog) isDisabledLocked(name string) bool {
	_, ok := c.disabled[strings.ToLower(name)]
	return ok
}

// rank filters out ineligible agents and orders the rest by score then
// priority, both descending. Ties keep load order.
func rank(defs []Definition, required []string) []Definition {
	type scored struct {
		def   Definition
		score int
	}
	candidates := make([]scored, 0, len(defs))
	for _, d := range defs {
		if s := d.Score(required); s > 0 {
			candidates = append(candidates, scored{def: d, score: s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].def.Priority > candidates[j].def.Priority
	})
	out := make([]Definition, len(candidates))
	for i, s := range candidates {
		out[i] = s.def
	}
	return out
}

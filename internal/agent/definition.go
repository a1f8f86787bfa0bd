// Package agent loads agent definitions and selects agents for workflow
// commands by matching declared capabilities against per-command
// requirements.
package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specrunner/specrunner/internal/errs"
)

// RoleGeneric marks the universal fallback agent.
const RoleGeneric = "generic"

// Definition is a loaded agent definition. Definitions are immutable after
// load; session-level enable/disable lives in the catalog overlay, not here.
type Definition struct {
	Name           string
	Role           string
	Specialization string
	Capabilities   []string
	Priority       int
	Prompt         string
	Path           string
}

// frontmatter is the YAML header of an agent definition file.
type frontmatter struct {
	Name           string   `yaml:"name"`
	Role           string   `yaml:"role"`
	Specialization string   `yaml:"specialization"`
	Capabilities   []string `yaml:"capabilities"`
	Priority       int      `yaml:"priority"`
}

// Matches reports whether the agent declares every required capability. An
// agent with no capabilities matches only an empty requirement set.
func (d Definition) Matches(required []string) bool {
	for _, cap := range required {
		if !slicesContains(d.Capabilities, cap) {
			return false
		}
	}
	return true
}

// Score ranks the agent for a requirement set: 0 when ineligible, otherwise
// the agent's priority with a +5 bonus for an exact capability match.
func (d Definition) Score(required []string) int {
	if !d.Matches(required) {
		return 0
	}
	score := d.Priority
	if sameCapabilitySet(d.Capabilities, required) {
		score += exactMatchBonus
	}
	return score
}

const exactMatchBonus = 5

func slicesContains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func sameCapabilitySet(a, b []string) bool {
	set := func(ss []string) map[string]struct{} {
		m := make(map[string]struct{}, len(ss))
		for _, s := range ss {
			m[s] = struct{}{}
		}
		return m
	}
	sa, sb := set(a), set(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

// ParseDefinitionFile reads one agent definition: a YAML frontmatter header
// delimited by "---" lines, followed by the free-form prompt body.
func ParseDefinitionFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, &errs.DefinitionError{Path: path, Err: err}
	}
	return parseDefinition(path, string(data))
}

func parseDefinition(path, content string) (Definition, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return Definition{}, &errs.DefinitionError{Path: path, Err: err}
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return Definition{}, &errs.DefinitionError{Path: path, Err: fmt.Errorf("parse frontmatter: %w", err)}
	}

	d := Definition{
		Name:           fm.Name,
		Role:           fm.Role,
		Specialization: fm.Specialization,
		Capabilities:   fm.Capabilities,
		Priority:       fm.Priority,
		Prompt:         strings.TrimSpace(body),
		Path:           path,
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if d.Role == "" {
		d.Role = RoleGeneric
	}
	if d.Priority == 0 {
		d.Priority = 1
	}
	if d.Prompt == "" {
		return Definition{}, &errs.DefinitionError{Path: path, Err: fmt.Errorf("empty prompt body")}
	}
	return d, nil
}

func splitFrontmatter(content string) (header, body string, err error) {
	const delim = "---"
	trimmed := strings.TrimLeft(content, "\n\r \t")
	if !strings.HasPrefix(trimmed, delim) {
		return "", "", fmt.Errorf("missing frontmatter header")
	}
	rest := strings.TrimPrefix(trimmed, delim)
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter header")
	}
	header = rest[:idx]
	body = rest[idx+len("\n"+delim):]
	// Drop the remainder of the closing delimiter line.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return header, body, nil
}

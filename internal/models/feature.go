package models

import "path/filepath"

// Feature is a unit of specification work, identified by a 3-digit id and a
// kebab-case name. It is derived from the branch and the filesystem and is
// never persisted on its own.
type Feature struct {
	ID      string `validate:"required,len=3,number"`
	Name    string `validate:"required,kebabcase"`
	Branch  string `validate:"required"`
	SpecDir string `validate:"required"`
	Status  FeatureStatus
}

// Slug returns the canonical "<id>-<name>" form used for branches and
// directory names.
func (f Feature) Slug() string {
	return f.ID + "-" + f.Name
}

// SpecFile returns the path to the feature's specification artifact.
func (f Feature) SpecFile() string { return filepath.Join(f.SpecDir, "spec.md") }

// PlanFile returns the path to the feature's plan artifact.
func (f Feature) PlanFile() string { return filepath.Join(f.SpecDir, "plan.md") }

// TasksFile returns the path to the feature's task breakdown artifact.
func (f Feature) TasksFile() string { return filepath.Join(f.SpecDir, "tasks.md") }

// Package state persists per-feature workflow state as a JSON document,
// written atomically so readers never observe a partial file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/models"
)

const (
	stateDirName  = ".state"
	stateFileName = "workflow.json"
)

// Tracker manages the workflow state document for one feature. The
// filesystem is injected so tests can run against an in-memory fs.
type Tracker struct {
	fs      afero.Fs
	specDir string
}

// NewTracker creates a tracker rooted at the feature's specification
// directory.
func NewTracker(fs afero.Fs, specDir string) *Tracker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Tracker{fs: fs, specDir: specDir}
}

// Path returns the location of the state file.
func (t *Tracker) Path() string {
	return filepath.Join(t.specDir, stateDirName, stateFileName)
}

// Load reads the feature's state. A missing file is not an error: it yields
// a fresh draft state with empty history.
func (t *Tracker) Load(featureID string) (*models.WorkflowState, error) {
	path := t.Path()
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewWorkflowState(featureID), nil
		}
		return nil, &errs.StateLoadError{Path: path, Err: err}
	}

	var st models.WorkflowState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &errs.StateLoadError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if st.CompletedCommands == nil {
		st.CompletedCommands = []models.CommandRecord{}
	}
	if st.ContextData == nil {
		st.ContextData = map[string]any{}
	}
	return &st, nil
}

// Save stamps last_updated and writes the whole aggregate through a
// temporary file and an atomic rename. On failure the previous document is
// left untouched.
func (t *Tracker) Save(st *models.WorkflowState) error {
	st.LastUpdated = time.Now().UTC()

	path := t.Path()
	if err := t.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &errs.StateSaveError{Path: path, Err: err}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return &errs.StateSaveError{Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(t.fs, tmp, data, 0o644); err != nil {
		return &errs.StateSaveError{Path: path, Err: err}
	}
	if err := t.fs.Rename(tmp, path); err != nil {
		_ = t.fs.Remove(tmp)
		return &errs.StateSaveError{Path: path, Err: err}
	}
	return nil
}

// RecordCommand appends a CommandRecord stamped now, then persists. Call
// exactly once per successfully completed command, after that command's
// artifacts are on disk.
func (t *Tracker) RecordCommand(st *models.WorkflowState, ct models.CommandType) error {
	st.CompletedCommands = append(st.CompletedCommands, models.CommandRecord{
		Command:   ct,
		Timestamp: time.Now().UTC(),
	})
	return t.Save(st)
}

// UpdatePhase sets the current phase, stamps the checkpoint and persists.
func (t *Tracker) UpdatePhase(st *models.WorkflowState, phase models.WorkflowPhase) error {
	st.CurrentPhase = phase
	st.LastCheckpoint = time.Now().UTC()
	return t.Save(st)
}

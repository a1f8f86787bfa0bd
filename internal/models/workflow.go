package models

import "time"

// CommandRecord is an immutable entry in a feature's command history.
type CommandRecord struct {
	Command   CommandType `json:"command"`
	Timestamp time.Time   `json:"timestamp"`
}

// WorkflowState tracks a feature's progress through the specification
// workflow. One JSON document per feature; unknown keys in the document are
// tolerated on read.
type WorkflowState struct {
	FeatureID         string          `json:"feature_id"`
	CurrentPhase      WorkflowPhase   `json:"current_phase"`
	CompletedCommands []CommandRecord `json:"completed_commands"`
	SuggestedNext     *CommandType    `json:"suggested_next"`
	ContextData       map[string]any  `json:"context_data"`
	LastCheckpoint    time.Time       `json:"last_checkpoint"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// NewWorkflowState returns a fresh state for a feature with no history.
func NewWorkflowState(featureID string) *WorkflowState {
	now := time.Now().UTC()
	return &WorkflowState{
		FeatureID:         featureID,
		CurrentPhase:      PhaseDraft,
		CompletedCommands: []CommandRecord{},
		ContextData:       map[string]any{},
		LastCheckpoint:    now,
		LastUpdated:       now,
	}
}

// Suggest records the suggested next command.
func (s *WorkflowState) Suggest(ct CommandType) {
	s.SuggestedNext = &ct
}

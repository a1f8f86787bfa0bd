// Package models defines the core data types shared across specrunner:
// command kinds, workflow phases, features and persisted workflow state.
package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CommandType identifies a workflow command.
type CommandType string

const (
	CommandConstitution CommandType = "constitution"
	CommandSpecify      CommandType = "specify"
	CommandClarify      CommandType = "clarify"
	CommandPlan         CommandType = "plan"
	CommandTasks        CommandType = "tasks"
	CommandImplement    CommandType = "implement"
	CommandAnalyze      CommandType = "analyze"
	CommandChecklist    CommandType = "checklist"
)

// AllCommands lists every command type in workflow order.
var AllCommands = []CommandType{
	CommandConstitution,
	CommandSpecify,
	CommandClarify,
	CommandPlan,
	CommandTasks,
	CommandImplement,
	CommandAnalyze,
	CommandChecklist,
}

// ParseCommandType converts a user-supplied string into a CommandType.
func ParseCommandType(s string) (CommandType, error) {
	ct := CommandType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCommands {
		if ct == known {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unknown command: %q", s)
}

// WorkflowPhase identifies the stage a feature's workflow is in.
type WorkflowPhase string

const (
	PhaseDraft        WorkflowPhase = "draft"
	PhaseConstitution WorkflowPhase = "constitution"
	PhaseSpecify      WorkflowPhase = "specify"
	PhaseClarify      WorkflowPhase = "clarify"
	PhasePlan         WorkflowPhase = "plan"
	PhaseTasks        WorkflowPhase = "tasks"
	PhaseImplement    WorkflowPhase = "implement"
)

// FeatureStatus describes how far a feature has progressed, derived from
// which artifact files exist on disk.
type FeatureStatus string

const (
	StatusDraft     FeatureStatus = "draft"
	StatusSpecified FeatureStatus = "specified"
	StatusPlanned   FeatureStatus = "planned"
	StatusTasked    FeatureStatus = "tasked"
)

// ProviderType identifies an LLM backend.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// ParseProviderType validates a provider name from config or flags.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported provider: %q (supported: anthropic, openai)", s)
	}
}

// global validator instance, caches struct info
var validate = validator.New()

var kebabPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func init() {
	_ = validate.RegisterValidation("kebabcase", func(fl validator.FieldLevel) bool {
		return kebabPattern.MatchString(fl.Field().String())
	})
}

// ValidateStruct performs validation on any struct carrying validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var msgs []string
	for _, e := range err.(validator.ValidationErrors) {
		msgs = append(msgs, fmt.Sprintf("field %q failed rule %q (value: %v)", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

package workflow

import (
	"fmt"
	"strings"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/models"
)

// Task prompt templates for each workflow command. The agent's own prompt
// template rides in the system message; these build the user message.

const specifyPromptTemplate = `Create a detailed feature specification for:

%s

Generate a comprehensive specification document in markdown format following this structure:

# Feature Specification: [Feature Name]

## Overview
Brief description of the feature.

## User Stories
List prioritized user stories (P1, P2, P3, P4).

## Functional Requirements
Detailed functional requirements (FR-001, FR-002, etc.).

## Non-Functional Requirements
Performance, security, scalability requirements.

## Constraints & Dependencies
Technical constraints and external dependencies.

## Edge Cases & Error Handling
Expected edge cases and how to handle them.

Please generate the complete specification document now.`

const planPromptTemplate = `Based on the following feature specification, create a detailed implementation plan.

## Specification:
%s

Generate a comprehensive implementation plan in markdown format following this structure:

# Implementation Plan

## Technical Context
Technologies, frameworks, and tools to be used.

## Architecture & Design
High-level architecture and component design.

## Data Model
Key entities and their relationships.

## API Contracts
Interface definitions and contracts.

## Testing Strategy
Approach to testing and validation.

## Deployment Plan
How the feature will be deployed.

Please generate the complete implementation plan now.`

const tasksPromptTemplate = `Based on the following specification and implementation plan, create a detailed task breakdown.

## Specification:
%s

## Implementation Plan:
%s

Generate a comprehensive task list in markdown format following this structure:

# Implementation Tasks

## Phase 1: Setup
- [ ] T001 [P1] Task description with file path

## Phase 2: Core Implementation
- [ ] T002 [P1] Task description with file path

... organize tasks by phase and priority ...

Each task should:
- Have a unique ID (T001, T002, etc.)
- Include priority (P1, P2, P3, P4)
- Have a clear, actionable description
- Specify the file or component to be modified

Please generate the complete task breakdown now.`

const implementPromptTemplate = `Generate detailed implementation guidance based on the following tasks and context.

%s

## Tasks:
%s

%s

For each task (or the specified tasks), provide:

## Implementation Guidance

### [Task ID]: [Task Description]

**Implementation Approach:**
- Step-by-step approach to implement this task
- Key considerations and gotchas
- Suggested file structure or changes

**Code Snippets/Pseudocode:**
- Relevant code examples or pseudocode
- API signatures or interfaces to implement

**Testing Guidance:**
- How to test this implementation
- Key test cases to cover

**Dependencies:**
- What needs to be done first
- What other tasks this affects

Provide concrete, actionable guidance that a developer can use to implement each task.`

const clarifyPromptTemplate = `Analyze the following specification and identify any ambiguities or underspecified areas.

## Specification:
%s

Generate up to 5 clarification questions that would help resolve ambiguities. Format as:

## Clarification Questions

1. **Question**: [Clear question]
   - Context: [Why this matters]
   - Options: [Possible answers]

Please generate the clarification questions now.`

const analyzePromptTemplate = `Analyze the following artifacts for consistency, completeness, and quality:

%s

Please provide a comprehensive analysis covering:

## Consistency Analysis
- Are the plan and tasks aligned with the specification?
- Do requirements in the spec have corresponding implementation in plan/tasks?
- Are there any contradictions between artifacts?

## Completeness Analysis
- Are all functional requirements covered?
- Are there gaps in the implementation plan?
- Are any edge cases or error scenarios missing?

## Quality Assessment
- Are requirements clear and testable?
- Is the architecture sound?
- Are tasks well-defined and actionable?

## Recommendations
- What should be addressed before implementation?
- What could be improved or clarified?
- Are there any risks or concerns?

Generate a detailed analysis report in markdown format.`

const checklistPromptTemplate = `Based on the following feature artifacts, generate a comprehensive quality checklist for this feature.

%s

%s

Generate a detailed checklist covering:

## Pre-Implementation Checklist
- [ ] Requirements review items
- [ ] Design validation items
- [ ] Dependency verification items

## Implementation Checklist
- [ ] Code quality items
- [ ] Testing items
- [ ] Documentation items

## Pre-Deployment Checklist
- [ ] Security review items
- [ ] Performance validation items
- [ ] Integration testing items

## Post-Deployment Checklist
- [ ] Monitoring setup items
- [ ] Rollback plan items
- [ ] Documentation updates items

Each checklist item should be specific and actionable for this feature.`

const constitutionPromptTemplate = `Create a project constitution that defines the principles, standards, and guidelines for this project.

%s

Generate a comprehensive constitution document in markdown format covering:

# Project Constitution

## Core Principles
Define the fundamental values and principles that guide all decisions in this project.

## Technical Standards
### Code Quality
### Architecture
### Security

## Development Workflow
### Version Control
### Testing Strategy
### Documentation

## Quality Assurance
- Definition of Done
- Code review checklist
- Quality gates

## Deployment & Operations
- Deployment process
- Monitoring requirements
- Incident response guidelines

Each section should contain specific, actionable guidelines that team members can follow.`

const suggestionsPromptTemplate = `I just completed a %s command and generated the following content:

---
%s
---

Based on this %s, provide 2-4 specific, actionable suggestions for what to do next.

Available commands you can suggest:
  - /spec.specify <description> - Create feature specification
  - /spec.clarify - Ask clarification questions
  - /spec.plan - Generate implementation plan
  - /spec.tasks - Generate task breakdown
  - /spec.implement - Execute implementation
  - /spec.analyze - Analyze consistency
  - /spec.checklist - Generate checklist
  - /spec.constitution - Create project constitution

Available agents (use with --agents flag):
%s

Consider:
- What's the logical next step in the workflow?
- What might need clarification or refinement?
- Which specialized agents would be most helpful?

Format your response as a brief bulleted list (2-4 items). Be specific and concrete. Start directly with the bullets, no introduction needed.`

func buildSpecifyPrompt(userInput string) string {
	return fmt.Sprintf(specifyPromptTemplate, userInput)
}

func buildPlanPrompt(specContent string) string {
	return fmt.Sprintf(planPromptTemplate, specContent)
}

func buildTasksPrompt(specContent, planContent string) string {
	return fmt.Sprintf(tasksPromptTemplate, specContent, planContent)
}

func buildImplementPrompt(contextSections, tasksContent, userInput string) string {
	filter := ""
	if userInput != "" {
		filter = "Focus on: " + userInput
	}
	return fmt.Sprintf(implementPromptTemplate, contextSections, tasksContent, filter)
}

func buildClarifyPrompt(specContent string) string {
	return fmt.Sprintf(clarifyPromptTemplate, specContent)
}

func buildAnalyzePrompt(artifacts []artifactContent) string {
	sections := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		sections = append(sections, fmt.Sprintf("## %s\n\n%s", a.name, a.content))
	}
	return fmt.Sprintf(analyzePromptTemplate, strings.Join(sections, "\n\n---\n\n"))
}

func buildChecklistPrompt(contextSections, userInput string) string {
	extra := ""
	if userInput != "" {
		extra = "Additional requirements: " + userInput
	}
	return fmt.Sprintf(checklistPromptTemplate, contextSections, extra)
}

func buildConstitutionPrompt(userInput string) string {
	principles := ""
	if userInput != "" {
		principles = "User-provided principles: " + userInput
	}
	return fmt.Sprintf(constitutionPromptTemplate, principles)
}

func buildSuggestionsPrompt(ct models.CommandType, content string, agents []agent.Definition) string {
	lines := make([]string, 0, len(agents))
	for i, a := range agents {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", a.Name, a.Specialization))
	}
	return fmt.Sprintf(suggestionsPromptTemplate, ct, content, ct, strings.Join(lines, "\n"))
}

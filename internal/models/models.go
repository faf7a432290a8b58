package models

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects the flavour of feature being described. It biases intent
// extraction and is echoed verbatim into rendered code.
type Mode string

const (
	ModeGameplay        Mode = "gameplay"
	ModeAutomation      Mode = "automation"
	ModeVideoProcessing Mode = "video-processing"
	ModeWebBackend      Mode = "web-backend"
)

// DefaultMode is used when a caller leaves the mode empty.
const DefaultMode = ModeGameplay

// Modes returns the supported modes in sorted order.
func Modes() []Mode {
	return []Mode{ModeAutomation, ModeGameplay, ModeVideoProcessing, ModeWebBackend}
}

// ModeNames returns the supported modes as plain strings, sorted.
func ModeNames() []string {
	names := make([]string, 0, 4)
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return names
}

// Valid reports whether m is one of the supported modes. Matching is case-sensitive.
func (m Mode) Valid() bool {
	switch m {
	case ModeGameplay, ModeAutomation, ModeVideoProcessing, ModeWebBackend:
		return true
	}
	return false
}

// ParsedIntent is the normalized understanding of a prompt.
type ParsedIntent struct {
	Entities   []string `yaml:"entities" json:"entities"`
	Actions    []string `yaml:"actions" json:"actions"`
	Conditions []string `yaml:"conditions" json:"conditions"`
	Outputs    []string `yaml:"outputs" json:"outputs"`
}

// NewParsedIntent builds an intent whose lists are never nil. The inputs are
// copied so the caller may keep mutating its own slices.
func NewParsedIntent(entities, actions, conditions, outputs []string) ParsedIntent {
	return ParsedIntent{
		Entities:   cloneList(entities),
		Actions:    cloneList(actions),
		Conditions: cloneList(conditions),
		Outputs:    cloneList(outputs),
	}
}

// Normalized returns a copy with nil lists replaced by empty ones.
func (p ParsedIntent) Normalized() ParsedIntent {
	return NewParsedIntent(p.Entities, p.Actions, p.Conditions, p.Outputs)
}

// IsEmpty reports whether nothing at all was understood.
func (p ParsedIntent) IsEmpty() bool {
	return len(p.Entities) == 0 && len(p.Actions) == 0 && len(p.Conditions) == 0 && len(p.Outputs) == 0
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// PlanStep describes one pipeline stage for explanation output.
type PlanStep struct {
	Name    string `yaml:"name" json:"name"`
	Details string `yaml:"details" json:"details"`
}

// Fixed stage names, in execution order.
const (
	StepIntentParse   = "intent-parse"
	StepTaskDecompose = "task-decompose"
	StepTargetDesign  = "target-design"
	StepGenerate      = "generate"
	StepSelfCheck     = "self-check"
)

// StepNames returns the five stage names in order.
func StepNames() []string {
	return []string{StepIntentParse, StepTaskDecompose, StepTargetDesign, StepGenerate, StepSelfCheck}
}

// StateModel returns the canonical state fields every generated unit exposes.
// A fresh map is returned on every call.
func StateModel() map[string]string {
	return map[string]string{
		"active":     "bool",
		"last_event": "string",
		"status":     "string",
	}
}

// GenerationPlan wraps an intent with the staged plan used to render it.
type GenerationPlan struct {
	Mode       Mode              `yaml:"mode" json:"mode"`
	Intent     ParsedIntent      `yaml:"intent" json:"intent"`
	Steps      []PlanStep        `yaml:"steps" json:"steps"`
	StateModel map[string]string `yaml:"state_model" json:"state_model"`
}

// Explain renders the plan as indented, human-readable text.
func (g GenerationPlan) Explain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s\n", g.Mode)
	b.WriteString("Intent:\n")
	fmt.Fprintf(&b, "  entities:   %s\n", formatList(g.Intent.Entities))
	fmt.Fprintf(&b, "  actions:    %s\n", formatList(g.Intent.Actions))
	fmt.Fprintf(&b, "  conditions: %s\n", formatList(g.Intent.Conditions))
	fmt.Fprintf(&b, "  outputs:    %s\n", formatList(g.Intent.Outputs))
	b.WriteString("Steps:\n")
	for i, step := range g.Steps {
		fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, step.Name, step.Details)
	}
	b.WriteString("State model:\n")
	keys := make([]string, 0, len(g.StateModel))
	for k := range g.StateModel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, g.StateModel[k])
	}
	return b.String()
}

// FormatList renders a list the way plan details show it: [a b c].
func FormatList(items []string) string {
	return formatList(items)
}

func formatList(items []string) string {
	return "[" + strings.Join(items, " ") + "]"
}

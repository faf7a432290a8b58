package models

import (
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGenerationPlanYAML(t *testing.T) {
	plan := GenerationPlan{
		Mode:   ModeGameplay,
		Intent: NewParsedIntent([]string{"player"}, []string{"jump"}, nil, nil),
		Steps: []PlanStep{
			{Name: StepIntentParse, Details: "entities=[player]"},
		},
		StateModel: StateModel(),
	}

	data, err := yaml.Marshal(plan)
	if err != nil {
		t.Fatalf("Failed to marshal plan: %v", err)
	}

	var plan2 GenerationPlan
	if err := yaml.Unmarshal(data, &plan2); err != nil {
		t.Fatalf("Failed to unmarshal plan: %v", err)
	}

	if plan2.Intent.Entities[0] != "player" {
		t.Errorf("Expected entity player, got %v", plan2.Intent.Entities)
	}
	if plan2.StateModel["last_event"] != "string" {
		t.Errorf("Expected last_event to be string, got %q", plan2.StateModel["last_event"])
	}
}

func TestSaveLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plan.yaml")
	plan := GenerationPlan{
		Mode:       ModeWebBackend,
		Intent:     NewParsedIntent(nil, []string{"respond"}, nil, nil),
		StateModel: StateModel(),
	}

	if err := SavePlan(path, plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	loaded, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if loaded.Mode != ModeWebBackend {
		t.Errorf("Expected mode web-backend, got %s", loaded.Mode)
	}
	if loaded.Intent.Entities == nil || loaded.Intent.Outputs == nil {
		t.Errorf("Expected loaded lists to be non-nil, got %+v", loaded.Intent)
	}
}

func TestNewParsedIntentNeverNil(t *testing.T) {
	intent := NewParsedIntent(nil, nil, nil, nil)
	if intent.Entities == nil || intent.Actions == nil || intent.Conditions == nil || intent.Outputs == nil {
		t.Fatalf("Expected all lists to be present, got %+v", intent)
	}
	if !intent.IsEmpty() {
		t.Errorf("Expected intent to be empty")
	}
}

func TestModeValid(t *testing.T) {
	for _, m := range Modes() {
		if !m.Valid() {
			t.Errorf("Expected %s to be valid", m)
		}
	}
	if Mode("Gameplay").Valid() {
		t.Errorf("Expected mode matching to be case-sensitive")
	}
}

func TestExplain(t *testing.T) {
	plan := GenerationPlan{
		Mode:       ModeAutomation,
		Intent:     NewParsedIntent([]string{"file"}, []string{"save"}, nil, nil),
		Steps:      []PlanStep{{Name: StepGenerate, Details: "Render target code"}},
		StateModel: StateModel(),
	}
	out := plan.Explain()
	for _, want := range []string{"Mode: automation", "entities:   [file]", "1. generate: Render target code", "active: bool"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected explanation to contain %q, got:\n%s", want, out)
		}
	}
}

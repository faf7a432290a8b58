package translator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/nevora/english-to-code/internal/models"
)

// BlueprintSchema versions the graph payload consumed by the editor importer.
const BlueprintSchema = "nevora.unreal.blueprint.graph.v2"

// DefaultBlueprintName is used when the caller gives no name.
const DefaultBlueprintName = "BP_GeneratedFeature"

// Blueprint is the visual-scripting interchange payload: an entry node, a
// branch on the conditions and an action sequence, joined by two edges.
type Blueprint struct {
	Schema        string              `json:"schema"`
	BlueprintName string              `json:"blueprint_name"`
	Mode          models.Mode         `json:"mode"`
	Prompt        string              `json:"prompt"`
	Intent        models.ParsedIntent `json:"intent"`
	Nodes         []BlueprintNode     `json:"nodes"`
	Edges         []BlueprintEdge     `json:"edges"`
	ImportHints   ImportHints         `json:"import_hints"`
}

// BlueprintNode is one graph node. Pointer fields are present only on the
// node types that carry them.
type BlueprintNode struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ConditionTokens *[]string `json:"condition_tokens,omitempty"`
	Actions         *[]string `json:"actions,omitempty"`
	Entities        *[]string `json:"entities,omitempty"`
	Outputs         *[]string `json:"outputs,omitempty"`
	Pins            []string  `json:"pins"`
}

// BlueprintEdge connects two pins, written as "node.pin".
type BlueprintEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ImportHints tells a reader how to turn the payload into an editor asset.
type ImportHints struct {
	UnrealPlugin string `json:"unreal_plugin"`
	Notes        string `json:"notes"`
}

// Graph node identifiers.
const (
	NodeBeginPlay       = "begin_play"
	NodeBranchCondition = "branch_condition"
	NodeActionSequence  = "action_sequence"
)

// NewBlueprint maps a plan onto the fixed three-node graph.
func NewBlueprint(prompt, name string, plan models.GenerationPlan) Blueprint {
	if name == "" {
		name = DefaultBlueprintName
	}
	intent := plan.Intent.Normalized()
	return Blueprint{
		Schema:        BlueprintSchema,
		BlueprintName: name,
		Mode:          plan.Mode,
		Prompt:        prompt,
		Intent:        intent,
		Nodes: []BlueprintNode{
			{ID: NodeBeginPlay, Type: "EventBeginPlay", Pins: []string{"exec_out"}},
			{
				ID:              NodeBranchCondition,
				Type:            "Branch",
				ConditionTokens: &intent.Conditions,
				Pins:            []string{"exec_in", "true", "false"},
			},
			{
				ID:       NodeActionSequence,
				Type:     "ActionSequence",
				Actions:  &intent.Actions,
				Entities: &intent.Entities,
				Outputs:  &intent.Outputs,
				Pins:     []string{"exec_in", "exec_out"},
			},
		},
		Edges: []BlueprintEdge{
			{From: NodeBeginPlay + ".exec_out", To: NodeBranchCondition + ".exec_in"},
			{From: NodeBranchCondition + ".true", To: NodeActionSequence + ".exec_in"},
		},
		ImportHints: ImportHints{
			UnrealPlugin: "examples/unreal_importer.py",
			Notes:        "Use Unreal Editor Python API to materialize nodes into a real .uasset",
		},
	}
}

// Encode renders the payload as two-space indented JSON.
func (b Blueprint) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode blueprint")
	}
	return out, nil
}

// BuildBlueprint plans prompt and returns the payload without writing it.
func (t *Translator) BuildBlueprint(ctx context.Context, prompt, name string, mode models.Mode) (Blueprint, error) {
	plan, err := t.BuildGenerationPlan(ctx, prompt, mode)
	if err != nil {
		return Blueprint{}, err
	}
	return NewBlueprint(prompt, name, plan), nil
}

// ExportBlueprint writes the payload for prompt to outputPath, creating
// parent directories, and returns the path written.
func (t *Translator) ExportBlueprint(ctx context.Context, prompt, outputPath, name string, mode models.Mode) (string, error) {
	bp, err := t.BuildBlueprint(ctx, prompt, name, mode)
	if err != nil {
		return "", err
	}
	data, err := bp.Encode()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory for %s", outputPath)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write blueprint %s", outputPath)
	}
	t.logger.Info("blueprint exported", zapPath(outputPath), zapMode(mode))
	return outputPath, nil
}

// Package worldbuilder asks a text-generation backend for a small Pygame
// project built from four design stages.
package worldbuilder

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"

	"github.com/nevora/english-to-code/internal/engine"
)

// SystemPrompt frames the backend as a world builder returning strict JSON.
const SystemPrompt = "You are a game world builder and code generator. " +
	"Given staged world design inputs, generate a runnable Python + Pygame starter project. " +
	"Return STRICT JSON only with keys: environment, characters, rules, events, main. " +
	"Each value must be a complete code section string. " +
	"Make sure sections are connected and coherent."

//go:embed prompts/world.txt
var worldPrompt string

var worldTemplate = template.Must(template.New("world").Parse(worldPrompt))

// Section keys, in the order they are written.
var Sections = []string{"environment", "characters", "rules", "events", "main"}

// Stages are the four design inputs.
type Stages struct {
	Environment string `json:"environment"`
	Characters  string `json:"characters"`
	Rules       string `json:"rules"`
	Events      string `json:"events"`
}

// World maps each section key to Python source.
type World map[string]string

// BuildPrompt renders the user prompt for stages.
func BuildPrompt(stages Stages) (string, error) {
	var buf bytes.Buffer
	if err := worldTemplate.Execute(&buf, stages); err != nil {
		return "", errors.Wrap(err, "render world prompt")
	}
	return buf.String(), nil
}

// ParseResponse validates a backend reply. Every section must be present
// as a non-empty string.
func ParseResponse(raw string) (World, error) {
	clean := engine.StripFences(raw)

	var payload any
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, errors.Wrap(err, "world builder response was not valid JSON")
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.New("world builder response must be a JSON object")
	}

	var missing []string
	for _, key := range Sections {
		if _, ok := obj[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf("world builder response missing keys: %s", strings.Join(missing, ", "))
	}

	world := make(World, len(Sections))
	for _, key := range Sections {
		value, ok := obj[key].(string)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, errors.Newf("world builder key %q must be a non-empty string", key)
		}
		world[key] = value
	}
	return world, nil
}

// Generate sends stages to gen and parses the reply.
func Generate(ctx context.Context, gen engine.Generator, stages Stages) (World, error) {
	prompt, err := BuildPrompt(stages)
	if err != nil {
		return nil, err
	}
	raw, err := gen.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", gen.Name())
	}
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Newf("%s returned an empty response", gen.Name())
	}
	return ParseResponse(raw)
}

// Write stores each section as <key>.py under dir and returns the paths in
// section order.
func (w World) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	paths := make([]string, 0, len(Sections))
	for _, key := range Sections {
		path := filepath.Join(dir, key+".py")
		if err := os.WriteFile(path, []byte(w[key]), 0o644); err != nil {
			return nil, errors.Wrapf(err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

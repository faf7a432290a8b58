package planner

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/nevora/english-to-code/internal/engine"
	"github.com/nevora/english-to-code/internal/models"
)

//go:embed prompts/plan_intent.txt
var planIntentPrompt string

const semanticSystemPrompt = "You are a requirements analyst who turns short feature descriptions into structured intent for a code generator."

var planIntentTemplate = template.Must(template.New("plan_intent").Parse(planIntentPrompt))

// Semantic delegates intent extraction to a text-generation backend. Each
// Plan call makes exactly one request; callers own retries and fallback.
type Semantic struct {
	gen engine.Generator
}

// NewSemantic wraps a generator. It fails when gen is nil so callers can fall
// back at construction time.
func NewSemantic(gen engine.Generator) (*Semantic, error) {
	if gen == nil {
		return nil, errors.New("semantic planner requires a text-generation backend")
	}
	return &Semantic{gen: gen}, nil
}

func (s *Semantic) Name() string { return "semantic:" + s.gen.Name() }

// Plan asks the backend for YAML intent and parses it.
func (s *Semantic) Plan(ctx context.Context, text string, mode models.Mode) (models.ParsedIntent, error) {
	var buf bytes.Buffer
	data := struct {
		Mode models.Mode
		Text string
	}{Mode: mode, Text: text}
	if err := planIntentTemplate.Execute(&buf, data); err != nil {
		return models.ParsedIntent{}, errors.Wrap(err, "render intent prompt")
	}

	raw, err := s.gen.Generate(ctx, semanticSystemPrompt, buf.String())
	if err != nil {
		return models.ParsedIntent{}, errors.Wrapf(err, "%s request failed", s.gen.Name())
	}
	return ParseIntentYAML(raw)
}

// ParseIntentYAML parses a (possibly fenced) YAML intent reply. entities,
// actions and conditions are required; outputs defaults to empty.
func ParseIntentYAML(raw string) (models.ParsedIntent, error) {
	clean := engine.StripFences(raw)
	if clean == "" {
		return models.ParsedIntent{}, errors.New("empty intent response")
	}

	var reply struct {
		Entities   *[]string `yaml:"entities"`
		Actions    *[]string `yaml:"actions"`
		Conditions *[]string `yaml:"conditions"`
		Outputs    *[]string `yaml:"outputs"`
	}
	if err := yaml.Unmarshal([]byte(clean), &reply); err != nil {
		return models.ParsedIntent{}, errors.WithDetailf(
			errors.Wrap(err, "failed to parse intent YAML"), "output was: %s", clean)
	}

	var missing []string
	if reply.Entities == nil {
		missing = append(missing, "entities")
	}
	if reply.Actions == nil {
		missing = append(missing, "actions")
	}
	if reply.Conditions == nil {
		missing = append(missing, "conditions")
	}
	if len(missing) > 0 {
		return models.ParsedIntent{}, errors.Newf("intent response missing keys: %s", strings.Join(missing, ", "))
	}

	deref := func(p *[]string) []string {
		if p == nil {
			return nil
		}
		return *p
	}
	return models.ParsedIntent{
		Entities:   normalizeList(deref(reply.Entities)),
		Actions:    normalizeList(deref(reply.Actions)),
		Conditions: normalizeList(deref(reply.Conditions)),
		Outputs:    normalizeList(deref(reply.Outputs)),
	}, nil
}

func normalizeList(items []string) []string {
	var set orderedSet
	for _, item := range items {
		set.add(strings.Join(strings.Fields(strings.ToLower(item)), " "))
	}
	return set.list()
}

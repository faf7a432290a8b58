// Package targets renders a parsed intent as starter source code.
//
// Each supported language is one Renderer. The Registry is a fixed table
// built once; looking up an unknown target is an error, never a default.
package targets

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nevora/english-to-code/internal/models"
)

// UnitName is the name of the class or script every renderer emits.
const UnitName = "GeneratedFeature"

// Baseline target identifiers.
const (
	Python     = "python"
	JavaScript = "javascript"
	CSharp     = "csharp"
	CPP        = "cpp"
	GDScript   = "gdscript"
)

// ErrUnsupportedTarget marks lookups of identifiers not in the registry.
var ErrUnsupportedTarget = errors.New("unsupported target")

// Renderer turns an intent into one self-contained unit of source code. It
// must not fail and must not perform I/O.
type Renderer interface {
	Name() string
	Render(prompt string, intent models.ParsedIntent, mode models.Mode) string
}

// Registry maps target identifiers to renderers. It is not modified after
// construction.
type Registry struct {
	renderers map[string]Renderer
}

// Baseline returns the five built-in renderers.
func Baseline() []Renderer {
	return []Renderer{
		NewPythonRenderer(),
		NewJavaScriptRenderer(),
		NewCSharpRenderer(),
		NewCPPRenderer(),
		NewGDScriptRenderer(),
	}
}

// NewRegistry returns the baseline registry.
func NewRegistry() *Registry {
	r, err := NewRegistryWith(Baseline()...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistryWith builds a registry from an explicit renderer list. Names are
// normalized; empty or duplicate names are rejected.
func NewRegistryWith(renderers ...Renderer) (*Registry, error) {
	r := &Registry{renderers: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		name := Normalize(renderer.Name())
		if name == "" {
			return nil, errors.New("renderer has an empty name")
		}
		if _, dup := r.renderers[name]; dup {
			return nil, errors.Newf("duplicate renderer for target %q", name)
		}
		r.renderers[name] = renderer
	}
	return r, nil
}

// Normalize trims and lower-cases a target identifier.
func Normalize(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}

// Lookup returns the renderer for target. The error lists every supported
// identifier and matches ErrUnsupportedTarget under errors.Is.
func (r *Registry) Lookup(target string) (Renderer, error) {
	if renderer, ok := r.renderers[Normalize(target)]; ok {
		return renderer, nil
	}
	supported := strings.Join(r.Supported(), ", ")
	err := errors.Mark(errors.Newf("unsupported target %q. Supported: %s", target, supported), ErrUnsupportedTarget)
	return nil, errors.WithHintf(err, "choose one of: %s", supported)
}

// Has reports whether target is registered.
func (r *Registry) Has(target string) bool {
	_, ok := r.renderers[Normalize(target)]
	return ok
}

// Supported returns the registered identifiers, sorted.
func (r *Registry) Supported() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

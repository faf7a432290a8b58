package targets

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevora/english-to-code/internal/models"
)

var sampleIntent = models.NewParsedIntent(
	[]string{"enemy", "timer"},
	[]string{"spawn"},
	[]string{"timer reaches zero"},
	[]string{"hit animation"},
)

func TestRegistrySupported(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"cpp", "csharp", "gdscript", "javascript", "python"}, r.Supported())
	assert.True(t, r.Has(" Python "))
	assert.False(t, r.Has("rust"))
}

func TestRegistryLookupNormalizes(t *testing.T) {
	r := NewRegistry()
	renderer, err := r.Lookup("  GDScript\t")
	require.NoError(t, err)
	assert.Equal(t, GDScript, renderer.Name())
}

func TestRegistryLookupUnsupported(t *testing.T) {
	_, err := NewRegistry().Lookup("python2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTarget))
	for _, name := range []string{"python", "javascript", "csharp", "cpp", "gdscript"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.Contains(t, err.Error(), "python2")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestNewRegistryWithRejectsDuplicates(t *testing.T) {
	_, err := NewRegistryWith(NewPythonRenderer(), NewPythonRenderer())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "python")

	r, err := NewRegistryWith(NewCPPRenderer())
	require.NoError(t, err)
	assert.Equal(t, []string{"cpp"}, r.Supported())
}

func TestEveryModeAndTargetRenders(t *testing.T) {
	r := NewRegistry()
	for _, mode := range models.Modes() {
		for _, name := range r.Supported() {
			renderer, err := r.Lookup(name)
			require.NoError(t, err)

			out := renderer.Render("Spawn enemy when timer reaches zero", sampleIntent, mode)
			assert.Contains(t, out, UnitName, "%s/%s", name, mode)
			assert.Contains(t, out, "Mode: "+string(mode), "%s/%s", name, mode)
			assert.Contains(t, out, `"`+string(mode)+`"`, "%s/%s", name, mode)
			assert.Contains(t, out, "Actions: spawn", "%s/%s", name, mode)
			assert.Contains(t, out, `"enemy", "timer"`, "%s/%s", name, mode)
			assert.Contains(t, out, `"hit animation"`, "%s/%s", name, mode)
			assert.Contains(t, out, "Prompt: Spawn enemy when timer reaches zero", "%s/%s", name, mode)
		}
	}
}

func TestEmptyIntentRendersActionsNone(t *testing.T) {
	for _, renderer := range Baseline() {
		out := renderer.Render("", models.ParsedIntent{}, models.ModeGameplay)
		assert.Contains(t, out, "Actions: none", renderer.Name())
		assert.Contains(t, out, UnitName, renderer.Name())
	}
}

func TestCPPRenderer(t *testing.T) {
	out := NewCPPRenderer().Render("Spawn enemy", sampleIntent, models.ModeGameplay)
	assert.Contains(t, out, "class GeneratedFeature")
	assert.Contains(t, out, "int main()")
	assert.Contains(t, out, `std::vector<std::string> entities{"enemy", "timer"};`)
	assert.Contains(t, out, `kMode = "gameplay"`)
	assert.Contains(t, out, "last_event")
}

func TestGDScriptRenderer(t *testing.T) {
	out := NewGDScriptRenderer().Render("Jump when input is pressed", sampleIntent, models.ModeGameplay)
	assert.True(t, strings.HasPrefix(out, "# Auto-generated"))
	assert.Contains(t, out, "extends Node")
	assert.Contains(t, out, "class_name GeneratedFeature")
	assert.Contains(t, out, "\tprint(\"Actions: spawn\")")
}

func TestCSharpRenderer(t *testing.T) {
	out := NewCSharpRenderer().Render("Validate request", models.ParsedIntent{Actions: []string{"validate", "respond"}}, models.ModeWebBackend)
	assert.Contains(t, out, "public class GeneratedFeature")
	assert.Contains(t, out, "Console.WriteLine(\"Actions: validate, respond\");")
	assert.Contains(t, out, "public List<string> Entities { get; } = new List<string>();")
	assert.Contains(t, out, `new HashSet<string> { "request" }`)
}

func TestPythonAndJavaScriptStateFields(t *testing.T) {
	py := NewPythonRenderer().Render("x", sampleIntent, models.ModeAutomation)
	for _, field := range []string{"self.active", "self.last_event", "self.status"} {
		assert.Contains(t, py, field)
	}
	assert.Contains(t, py, `HANDLED_EVENTS = ["schedule", "trigger"]`)

	js := NewJavaScriptRenderer().Render("x", sampleIntent, models.ModeVideoProcessing)
	for _, field := range []string{"this.active", "this.lastEvent", "this.status"} {
		assert.Contains(t, js, field)
	}
	assert.Contains(t, js, "module.exports = { GeneratedFeature };")
}

func TestLiteralEscaping(t *testing.T) {
	intent := models.NewParsedIntent([]string{`say "hi"`, `back\slash`}, nil, nil, []string{"tab\there"})

	py := NewPythonRenderer().Render("x", intent, models.ModeGameplay)
	assert.Contains(t, py, `["say \"hi\"", "back\\slash"]`)
	assert.Contains(t, py, `["tab\there"]`)

	js := NewJavaScriptRenderer().Render("x", intent, models.ModeGameplay)
	assert.Contains(t, js, `["say \"hi\"", "back\\slash"]`)

	cpp := NewCPPRenderer().Render("x", models.NewParsedIntent([]string{"bell\a1"}, nil, nil, nil), models.ModeGameplay)
	assert.Contains(t, cpp, `{"bell\0071"}`)

	gd := NewGDScriptRenderer().Render("x", models.NewParsedIntent([]string{"nul\x00"}, nil, nil, nil), models.ModeGameplay)
	assert.Contains(t, gd, `["nul\u0000"]`)

	separators := models.NewParsedIntent([]string{"a\u0085b\u2028c\u2029d"}, nil, nil, nil)
	cs := NewCSharpRenderer().Render("x", separators, models.ModeGameplay)
	assert.Contains(t, cs, `new List<string> { "a\u0085b\u2028c\u2029d" }`)
	assert.NotContains(t, cs, "\u2028")
}

func TestHeaderLines(t *testing.T) {
	lines := headerLines("first line\r\nends with \\\nlast", models.ModeAutomation)
	assert.Equal(t, []string{
		"Auto-generated from English prompt.",
		"Prompt: first line",
		`  ends with \ .`,
		"  last",
		"Mode: automation",
	}, lines)

	lines = headerLines("a\rb\u0085c\u2028d\u2029e", models.ModeGameplay)
	assert.Equal(t, []string{
		"Auto-generated from English prompt.",
		"Prompt: a",
		"  b",
		"  c",
		"  d",
		"  e",
		"Mode: gameplay",
	}, lines)
}

func TestPromptStaysInsideHeaderComment(t *testing.T) {
	cases := map[string]string{
		Python:     "Spawn enemy\rraise SystemExit('injected')",
		JavaScript: "Spawn enemy\u2028throw new Error('injected')",
		CSharp:     "Spawn enemy\u0085throw new Exception(\"injected\");",
		CPP:        "Spawn enemy\rint injected = 1;",
		GDScript:   "Spawn enemy\rassert(false)",
	}
	for name, prompt := range cases {
		r, err := NewRegistry().Lookup(name)
		require.NoError(t, err)
		code := r.Render(prompt, sampleIntent, models.ModeGameplay)
		assert.NotContains(t, code, "\r", name)
		assert.NotContains(t, code, "\u0085", name)
		assert.NotContains(t, code, "\u2028", name)

		comment := "// "
		if name == Python || name == GDScript {
			comment = "# "
		}
		for _, line := range strings.Split(code, "\n") {
			if strings.Contains(line, "injected") || strings.Contains(line, "assert(false)") {
				assert.True(t, strings.HasPrefix(line, comment), "%s: %q escaped the header", name, line)
			}
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, renderer := range Baseline() {
		first := renderer.Render("Spawn enemy", sampleIntent, models.ModeGameplay)
		second := renderer.Render("Spawn enemy", sampleIntent, models.ModeGameplay)
		assert.Equal(t, first, second, renderer.Name())
	}
}

package targets

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/nevora/english-to-code/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// view is the data every template renders from.
type view struct {
	Unit        string
	Prompt      string
	Mode        string
	Header      []string
	Entities    []string
	Actions     []string
	Conditions  []string
	Outputs     []string
	Events      []string
	FirstEvent  string
	ActionsLine string
}

// modeEvents lists the event types a generated handler reacts to.
var modeEvents = map[models.Mode][]string{
	models.ModeGameplay:        {"input", "tick", "collision"},
	models.ModeWebBackend:      {"request"},
	models.ModeAutomation:      {"schedule", "trigger"},
	models.ModeVideoProcessing: {"frame", "upload"},
}

func newView(prompt string, intent models.ParsedIntent, mode models.Mode) view {
	intent = intent.Normalized()
	events, ok := modeEvents[mode]
	if !ok {
		events = []string{"event"}
	}
	actions := "none"
	if len(intent.Actions) > 0 {
		actions = strings.Join(intent.Actions, ", ")
	}
	return view{
		Unit:        UnitName,
		Prompt:      prompt,
		Mode:        string(mode),
		Header:      headerLines(prompt, mode),
		Entities:    intent.Entities,
		Actions:     intent.Actions,
		Conditions:  intent.Conditions,
		Outputs:     intent.Outputs,
		Events:      events,
		FirstEvent:  events[0],
		ActionsLine: "Actions: " + actions,
	}
}

// lineBreak matches every sequence some target language ends a comment on.
var lineBreak = regexp.MustCompile("\r\n|[\r\n\u0085\u2028\u2029]")

// headerLines is the comment block at the top of every unit. Lines never end
// in a backslash so a C++ line comment cannot swallow the next line.
func headerLines(prompt string, mode models.Mode) []string {
	lines := []string{"Auto-generated from English prompt."}
	for i, line := range lineBreak.Split(prompt, -1) {
		line = strings.TrimRight(line, " \t")
		if strings.HasSuffix(line, `\`) {
			line += " ."
		}
		if i == 0 {
			lines = append(lines, strings.TrimRight("Prompt: "+line, " "))
		} else {
			lines = append(lines, strings.TrimRight("  "+line, " "))
		}
	}
	return append(lines, "Mode: "+string(mode))
}

// quoter escapes one string as a double-quoted literal of some language.
type quoter func(string) string

func listOf(q quoter, open, close string) func([]string) string {
	return func(items []string) string {
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = q(item)
		}
		return open + strings.Join(quoted, ", ") + close
	}
}

// quoteC escapes with C-style backslash sequences and asks escape about
// every other rune.
func quoteC(s string, escape func(r rune) (string, bool)) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if esc, ok := escape(r); ok {
				b.WriteString(esc)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

func quotePython(s string) string {
	return quoteC(s, func(r rune) (string, bool) {
		if !isControl(r) {
			return "", false
		}
		return fmt.Sprintf(`\x%02x`, r), true
	})
}

// quoteUnicode also escapes U+0085, U+2028 and U+2029, which C# treats as
// line terminators inside a literal.
func quoteUnicode(s string) string {
	return quoteC(s, func(r rune) (string, bool) {
		if !isControl(r) && r != 0x85 && r != 0x2028 && r != 0x2029 {
			return "", false
		}
		return fmt.Sprintf(`\u%04x`, r), true
	})
}

// quoteCPP uses octal escapes; hex escapes in C++ absorb following hex digits.
func quoteCPP(s string) string {
	return quoteC(s, func(r rune) (string, bool) {
		if !isControl(r) {
			return "", false
		}
		return fmt.Sprintf(`\%03o`, r), true
	})
}

// quoteJS relies on JSON string syntax, which is valid JavaScript including
// the U+2028 and U+2029 separators.
func quoteJS(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}

// templateRenderer is a Renderer backed by one embedded template.
type templateRenderer struct {
	name string
	tmpl *template.Template
}

func newTemplateRenderer(name string, funcs template.FuncMap) *templateRenderer {
	file := "templates/" + name + ".tmpl"
	tmpl := template.Must(template.New(name + ".tmpl").Funcs(funcs).ParseFS(templateFS, file))
	return &templateRenderer{name: name, tmpl: tmpl}
}

func (t *templateRenderer) Name() string { return t.name }

func (t *templateRenderer) Render(prompt string, intent models.ParsedIntent, mode models.Mode) string {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, newView(prompt, intent, mode)); err != nil {
		// Templates are static and writing to a Builder cannot fail.
		panic(fmt.Sprintf("render %s: %v", t.name, err))
	}
	return b.String()
}

// NewPythonRenderer renders a Python class with a run(event) handler.
func NewPythonRenderer() Renderer {
	return newTemplateRenderer(Python, template.FuncMap{
		"str":  quotePython,
		"list": listOf(quotePython, "[", "]"),
	})
}

// NewJavaScriptRenderer renders an ES class exported for CommonJS.
func NewJavaScriptRenderer() Renderer {
	return newTemplateRenderer(JavaScript, template.FuncMap{
		"str":  quoteJS,
		"list": listOf(quoteJS, "[", "]"),
	})
}

// NewCSharpRenderer renders a public C# class.
func NewCSharpRenderer() Renderer {
	return newTemplateRenderer(CSharp, template.FuncMap{
		"str": quoteUnicode,
		"list": func(items []string) string {
			if len(items) == 0 {
				return "new List<string>()"
			}
			return listOf(quoteUnicode, "new List<string> { ", " }")(items)
		},
	})
}

// NewCPPRenderer renders a C++ class plus a main entry point.
func NewCPPRenderer() Renderer {
	return newTemplateRenderer(CPP, template.FuncMap{
		"str":  quoteCPP,
		"list": listOf(quoteCPP, "{", "}"),
	})
}

// NewGDScriptRenderer renders a Godot 4 script extending Node.
func NewGDScriptRenderer() Renderer {
	return newTemplateRenderer(GDScript, template.FuncMap{
		"str":  quoteUnicode,
		"list": listOf(quoteUnicode, "[", "]"),
	})
}

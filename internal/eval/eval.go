// Package eval scores the translator against golden prompts.
package eval

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/translator"
)

//go:embed golden.yaml
var goldenYAML []byte

// Case is one golden prompt. JSON datasets parse too, since JSON is YAML.
type Case struct {
	Prompt      string      `yaml:"prompt" json:"prompt"`
	Target      string      `yaml:"target" json:"target"`
	Mode        models.Mode `yaml:"mode,omitempty" json:"mode,omitempty"`
	MustContain []string    `yaml:"must_contain" json:"must_contain"`
}

// Result is the outcome of one case.
type Result struct {
	Case    Case     `json:"case"`
	Passed  bool     `json:"passed"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Report aggregates a run. Results keep the order of the input cases.
type Report struct {
	Passed  int      `json:"passed"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// Translator is the part of translator.Translator the harness needs.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (string, error)
}

// DefaultCases returns the embedded golden set.
func DefaultCases() ([]Case, error) {
	return ParseCases(goldenYAML)
}

// LoadCases reads a YAML or JSON case list from path.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read eval cases %s", path)
	}
	return ParseCases(data)
}

// ParseCases decodes a case list. Every case needs a prompt, a target and
// at least one token.
func ParseCases(data []byte) ([]Case, error) {
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, errors.Wrap(err, "parse eval cases")
	}
	for i, c := range cases {
		if strings.TrimSpace(c.Prompt) == "" || strings.TrimSpace(c.Target) == "" {
			return nil, errors.Newf("eval case %d needs a prompt and a target", i)
		}
		if len(c.MustContain) == 0 {
			return nil, errors.Newf("eval case %d has no must_contain tokens", i)
		}
	}
	return cases, nil
}

// Run translates every case with at most concurrency in flight. A case that
// fails to translate counts as failed; only cancellation of ctx aborts the run.
func Run(ctx context.Context, tr Translator, cases []Case, concurrency int) (Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runCase(gctx, tr, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, errors.Wrap(err, "eval run aborted")
	}

	report := Report{Total: len(cases), Results: results}
	for _, r := range results {
		if r.Passed {
			report.Passed++
		}
	}
	return report, nil
}

func runCase(ctx context.Context, tr Translator, c Case) Result {
	out, err := tr.Translate(ctx, translator.Request{Prompt: c.Prompt, Target: c.Target, Mode: c.Mode})
	if err != nil {
		return Result{Case: c, Error: err.Error()}
	}
	var missing []string
	for _, token := range c.MustContain {
		if !strings.Contains(out, token) {
			missing = append(missing, token)
		}
	}
	return Result{Case: c, Passed: len(missing) == 0, Missing: missing}
}

// String renders one PASS/FAIL line per case and the score.
func (r Report) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] target=%s prompt=%s", status, res.Case.Target, res.Case.Prompt)
		switch {
		case res.Error != "":
			fmt.Fprintf(&b, " error=%s", res.Error)
		case len(res.Missing) > 0:
			fmt.Fprintf(&b, " missing=%q", res.Missing)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nScore: %d/%d\n", r.Passed, r.Total)
	return b.String()
}

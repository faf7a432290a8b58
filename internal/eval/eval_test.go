package eval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevora/english-to-code/internal/translator"
)

func TestGoldenSetPasses(t *testing.T) {
	cases, err := DefaultCases()
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	report, err := Run(context.Background(), translator.New(), cases, 4)
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.True(t, r.Passed, "case %q/%s missing %v error %q", r.Case.Prompt, r.Case.Target, r.Missing, r.Error)
	}
	assert.Equal(t, len(cases), report.Total)
	assert.Equal(t, report.Total, report.Passed)
	assert.Contains(t, report.String(), "Score: ")
}

type scripted struct {
	outputs  map[string]string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *scripted) Translate(_ context.Context, req translator.Request) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	out, ok := s.outputs[req.Prompt]
	if !ok {
		return "", errors.New("unsupported target")
	}
	return out, nil
}

func TestRunScoresAndKeepsOrder(t *testing.T) {
	tr := &scripted{outputs: map[string]string{
		"a": "alpha beta",
		"b": "alpha",
	}}
	cases := []Case{
		{Prompt: "a", Target: "python", MustContain: []string{"alpha", "beta"}},
		{Prompt: "b", Target: "python", MustContain: []string{"alpha", "beta"}},
		{Prompt: "c", Target: "rust", MustContain: []string{"alpha"}},
	}

	report, err := Run(context.Background(), tr, cases, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Results, 3)

	assert.True(t, report.Results[0].Passed)
	assert.Equal(t, []string{"beta"}, report.Results[1].Missing)
	assert.Equal(t, "unsupported target", report.Results[2].Error)
	assert.LessOrEqual(t, tr.peak.Load(), int32(2))

	out := report.String()
	assert.Contains(t, out, "[PASS] target=python prompt=a")
	assert.Contains(t, out, "[FAIL] target=rust prompt=c error=unsupported target")
	assert.Contains(t, out, "Score: 1/3")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &scripted{}, []Case{{Prompt: "a", Target: "python", MustContain: []string{"x"}}}, 1)
	assert.Error(t, err)
}

func TestLoadCasesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.json")
	doc := `[{"prompt": "Spawn enemy", "target": "cpp", "must_contain": ["GeneratedFeature"]}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "cpp", cases[0].Target)
	assert.Empty(t, cases[0].Mode)
}

func TestParseCasesValidation(t *testing.T) {
	_, err := ParseCases([]byte(`[{"prompt": "", "target": "cpp", "must_contain": ["x"]}]`))
	assert.Error(t, err)

	_, err = ParseCases([]byte(`[{"prompt": "p", "target": "cpp"}]`))
	assert.Error(t, err)

	_, err = ParseCases([]byte(`{not: a list}`))
	assert.Error(t, err)
}

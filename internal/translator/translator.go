// Package translator turns an English feature description into starter code.
//
// A Translator plans the prompt (semantic planner when available, heuristic
// otherwise), wraps the intent in a GenerationPlan and hands it to the
// renderer registered for the requested target.
package translator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/config"
	"github.com/nevora/english-to-code/internal/engine"
	"github.com/nevora/english-to-code/internal/logging"
	"github.com/nevora/english-to-code/internal/metrics"
	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/planner"
	"github.com/nevora/english-to-code/internal/scaffold"
	"github.com/nevora/english-to-code/internal/targets"
	"github.com/nevora/english-to-code/internal/verify"
)

// ErrUnsupportedMode marks requests whose mode is not one of models.Modes.
var ErrUnsupportedMode = errors.New("unsupported mode")

// ErrUnsupportedTarget is re-exported from the renderer registry.
var ErrUnsupportedTarget = targets.ErrUnsupportedTarget

// ContextMarker introduces previous output appended to a refinement prompt.
const ContextMarker = "Previous output context:"

// Request is one translation.
type Request struct {
	Prompt string
	Target string
	// Mode defaults to gameplay when empty.
	Mode models.Mode
	// Context is previous output; it is only used when Refine is set.
	Context string
	Refine  bool
}

// Translator is safe for concurrent use.
type Translator struct {
	registry *targets.Registry
	selector *planner.Selector
	verifier *verify.Verifier
	logger   *zap.Logger

	override planner.Planner
	factory  planner.Factory
	vocab    *planner.Vocabulary
	timeout  time.Duration

	mu      sync.Mutex
	closers []func() error
}

// Option configures a Translator.
type Option func(*Translator)

// WithPlanner replaces the semantic planner with p. Failures of p still fall
// back to the heuristic planner.
func WithPlanner(p planner.Planner) Option {
	return func(t *Translator) { t.override = p }
}

// WithSemantic registers a factory for the semantic planner.
func WithSemantic(f planner.Factory) Option {
	return func(t *Translator) { t.factory = f }
}

// WithVocabulary replaces the heuristic vocabulary.
func WithVocabulary(v *planner.Vocabulary) Option {
	return func(t *Translator) { t.vocab = v }
}

// WithRegistry replaces the baseline renderer registry.
func WithRegistry(r *targets.Registry) Option {
	return func(t *Translator) { t.registry = r }
}

// WithVerifier replaces the host toolchain verifier.
func WithVerifier(v *verify.Verifier) Option {
	return func(t *Translator) { t.verifier = v }
}

// WithTimeout bounds each semantic planner call.
func WithTimeout(d time.Duration) Option {
	return func(t *Translator) { t.timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(t *Translator) { t.logger = l }
}

// New builds a Translator. Without options it is heuristic-only.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.OrNop(t.logger)
	if t.registry == nil {
		t.registry = targets.NewRegistry()
	}
	if t.verifier == nil {
		t.verifier = verify.New()
	}

	selectorOpts := []planner.Option{planner.WithLogger(t.logger), planner.WithTimeout(t.timeout)}
	if t.override != nil {
		selectorOpts = append(selectorOpts, planner.WithOverride(t.override))
	}
	if t.factory != nil {
		selectorOpts = append(selectorOpts, planner.WithSemantic(t.factory))
	}
	t.selector = planner.NewSelector(planner.NewHeuristic(t.vocab), selectorOpts...)
	return t
}

// NewFromConfig wires the semantic planner and vocabulary from cfg. The LLM
// backend is built lazily on the first plan; a missing credential only
// degrades planning to the heuristic.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Translator, error) {
	opts := []Option{WithLogger(logger), WithTimeout(cfg.PlannerTimeout)}

	if cfg.VocabularyPath != "" {
		vocab, err := planner.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithVocabulary(vocab))
	}

	if cfg.Planner != config.PlannerHeuristic {
		opts = append(opts, withBackend(cfg))
	}
	return New(opts...), nil
}

// withBackend installs a semantic factory backed by the LLM engine cfg
// selects. Clients it creates are released by Close.
func withBackend(cfg *config.Config) Option {
	return func(t *Translator) { t.factory = t.semanticFactory(cfg) }
}

func (t *Translator) semanticFactory(cfg *config.Config) planner.Factory {
	return func(ctx context.Context) (planner.Planner, error) {
		gen, err := engine.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.closers = append(t.closers, gen.Close)
		t.mu.Unlock()
		t.logger.Info("semantic planner ready", zap.String("backend", gen.Name()))
		return planner.NewSemantic(gen)
	}
}

// Close releases any LLM client created for planning.
func (t *Translator) Close() error {
	t.mu.Lock()
	closers := t.closers
	t.closers = nil
	t.mu.Unlock()

	var errs error
	for _, c := range closers {
		errs = errors.CombineErrors(errs, c())
	}
	return errs
}

// SupportedTargets returns the registered target identifiers, sorted.
func (t *Translator) SupportedTargets() []string {
	return t.registry.Supported()
}

// Translate renders req.Prompt as source code for req.Target. Mode and
// target are validated before any planning. Planner failures never surface
// here; they degrade to heuristic planning.
func (t *Translator) Translate(ctx context.Context, req Request) (string, error) {
	code, _, err := t.TranslateWithPlan(ctx, req)
	return code, err
}

// TranslateWithPlan is Translate that also returns the plan the code was
// rendered from.
func (t *Translator) TranslateWithPlan(ctx context.Context, req Request) (string, models.GenerationPlan, error) {
	started := time.Now()
	mode, err := resolveMode(req.Mode)
	if err != nil {
		metrics.ObserveTranslation("-", "-", "invalid", started)
		return "", models.GenerationPlan{}, err
	}
	renderer, err := t.registry.Lookup(req.Target)
	if err != nil {
		metrics.ObserveTranslation("-", string(mode), "invalid", started)
		return "", models.GenerationPlan{}, err
	}

	prompt := req.Prompt
	if req.Refine && req.Context != "" {
		prompt = RefinePrompt(prompt, req.Context)
	}

	intent, source := t.selector.PlanWithSource(ctx, prompt, mode)
	plan := BuildPlan(intent, mode)
	code := renderer.Render(prompt, plan.Intent, plan.Mode)

	metrics.ObserveTranslation(renderer.Name(), string(mode), "ok", started)
	t.logger.Debug("translated",
		zap.String("target", renderer.Name()),
		zapMode(mode),
		zap.String("planner", source),
		zap.Bool("refine", req.Refine && req.Context != ""),
		zap.Int("bytes", len(code)))
	return code, plan, nil
}

// RefinePrompt appends previous output to prompt as a delimited block.
func RefinePrompt(prompt, previous string) string {
	return prompt + "\n\n" + ContextMarker + "\n" + previous
}

// PlanIntent returns the intent for prompt without building a plan.
func (t *Translator) PlanIntent(ctx context.Context, prompt string, mode models.Mode) (models.ParsedIntent, error) {
	resolved, err := resolveMode(mode)
	if err != nil {
		return models.ParsedIntent{}, err
	}
	return t.selector.Plan(ctx, prompt, resolved), nil
}

// BuildGenerationPlan plans prompt and wraps the intent in the staged plan.
func (t *Translator) BuildGenerationPlan(ctx context.Context, prompt string, mode models.Mode) (models.GenerationPlan, error) {
	resolved, err := resolveMode(mode)
	if err != nil {
		return models.GenerationPlan{}, err
	}
	return BuildPlan(t.selector.Plan(ctx, prompt, resolved), resolved), nil
}

// VerifyOutput runs a syntax-only check of code for target. The boolean is
// true only when a toolchain actually accepted the code.
func (t *Translator) VerifyOutput(ctx context.Context, code, target string) (bool, string) {
	ok, msg := t.verifier.Verify(ctx, code, target)
	t.logger.Debug("verified", zap.String("target", target), zap.Bool("ok", ok), zap.String("message", msg))
	return ok, msg
}

// ScaffoldProject translates prompt and writes a starter project for target
// into dir, returning dir.
func (t *Translator) ScaffoldProject(ctx context.Context, prompt, target, dir string, mode models.Mode) (string, error) {
	code, err := t.Translate(ctx, Request{Prompt: prompt, Target: target, Mode: mode})
	if err != nil {
		return "", err
	}
	return t.ScaffoldCode(dir, target, code)
}

// ScaffoldCode writes a starter project around code that was already
// rendered for target.
func (t *Translator) ScaffoldCode(dir, target, code string) (string, error) {
	target = targets.Normalize(target)
	root, err := scaffold.Write(dir, target, code)
	if err != nil {
		return "", err
	}
	t.logger.Info("project scaffolded", zapPath(root), zap.String("target", target))
	return root, nil
}

func resolveMode(mode models.Mode) (models.Mode, error) {
	if mode == "" {
		return models.DefaultMode, nil
	}
	if !mode.Valid() {
		supported := strings.Join(models.ModeNames(), ", ")
		err := errors.Mark(errors.Newf("unsupported mode %q. Supported: %s", string(mode), supported), ErrUnsupportedMode)
		return "", errors.WithHintf(err, "choose one of: %s", supported)
	}
	return mode, nil
}

func zapMode(mode models.Mode) zap.Field { return zap.String("mode", string(mode)) }

func zapPath(path string) zap.Field { return zap.String("path", path) }

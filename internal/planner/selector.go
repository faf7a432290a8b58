package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nevora/english-to-code/internal/logging"
	"github.com/nevora/english-to-code/internal/metrics"
	"github.com/nevora/english-to-code/internal/models"
)

// Planner turns text into a ParsedIntent.
type Planner interface {
	Plan(ctx context.Context, text string, mode models.Mode) (models.ParsedIntent, error)
	Name() string
}

// Factory constructs a planner on demand. Construction may fail, e.g. when a
// credential is missing.
type Factory func(ctx context.Context) (Planner, error)

// Selector picks a planner per request and always produces an intent.
//
// Attempt order: the override if one was given, otherwise the semantic
// planner built by the factory; the heuristic planner is the terminal
// fallback and cannot fail.
type Selector struct {
	heuristic *Heuristic
	override  Planner
	factory   Factory
	timeout   time.Duration
	logger    *zap.Logger

	once        sync.Once
	semantic    Planner
	mu          sync.Mutex
	semanticErr error
}

// Option configures a Selector.
type Option func(*Selector)

// WithOverride makes p the only planner tried before the heuristic fallback.
func WithOverride(p Planner) Option {
	return func(s *Selector) { s.override = p }
}

// WithSemantic registers the factory for the semantic planner. It is called
// at most once per Selector.
func WithSemantic(f Factory) Option {
	return func(s *Selector) { s.factory = f }
}

// WithTimeout bounds each non-heuristic attempt. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Selector) { s.timeout = d }
}

// WithLogger makes fallbacks visible.
func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// NewSelector builds a selector around the heuristic fallback. A nil
// heuristic uses the default vocabulary.
func NewSelector(h *Heuristic, opts ...Option) *Selector {
	if h == nil {
		h = NewHeuristic(nil)
	}
	s := &Selector{heuristic: h}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Heuristic returns the terminal fallback planner.
func (s *Selector) Heuristic() *Heuristic { return s.heuristic }

// Plan returns an intent for text. It never fails.
func (s *Selector) Plan(ctx context.Context, text string, mode models.Mode) models.ParsedIntent {
	intent, _ := s.PlanWithSource(ctx, text, mode)
	return intent
}

// PlanWithSource is Plan plus the name of the planner that produced the result.
func (s *Selector) PlanWithSource(ctx context.Context, text string, mode models.Mode) (models.ParsedIntent, string) {
	if p := s.primary(ctx); p != nil {
		intent, err := s.attempt(ctx, p, text, mode)
		if err == nil {
			metrics.ObservePlanner(p.Name(), metrics.OutcomeSuccess)
			return intent.Normalized(), p.Name()
		}
		metrics.ObservePlanner(p.Name(), metrics.OutcomePlanErr)
		s.logger.Warn("planner failed, falling back to heuristic",
			zap.String("planner", p.Name()),
			zap.String("mode", string(mode)),
			zap.Error(err))
	}

	metrics.ObservePlanner(HeuristicName, metrics.OutcomeSuccess)
	return s.heuristic.Extract(text, mode), HeuristicName
}

// primary returns the planner to try before the heuristic, or nil.
func (s *Selector) primary(ctx context.Context) Planner {
	if s.override != nil {
		return s.override
	}
	if s.factory == nil {
		return nil
	}

	s.once.Do(func() {
		p, err := s.construct(context.WithoutCancel(ctx))
		if err != nil {
			s.mu.Lock()
			s.semanticErr = err
			s.mu.Unlock()
			metrics.ObservePlanner("semantic", metrics.OutcomeConstructErr)
			s.logger.Warn("semantic planner unavailable, using heuristic", zap.Error(err))
			return
		}
		s.semantic = p
	})
	return s.semantic
}

// construct calls the factory, converting a panic into an error.
func (s *Selector) construct(ctx context.Context) (p Planner, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("planner construction panicked: %v", r)
		}
	}()
	p, err = s.factory(ctx)
	if err == nil && p == nil {
		err = fmt.Errorf("planner factory returned no planner")
	}
	return p, err
}

// attempt runs one planner call with the configured timeout, converting a
// panic into an error.
func (s *Selector) attempt(ctx context.Context, p Planner, text string, mode models.Mode) (intent models.ParsedIntent, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("planner %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Plan(ctx, text, mode)
}

// SemanticError reports why the semantic planner could not be constructed,
// if it was attempted and failed.
func (s *Selector) SemanticError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.semanticErr
}

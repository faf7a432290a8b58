package planner

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/nevora/english-to-code/internal/models"
)

// HeuristicName labels the keyword planner in logs and metrics.
const HeuristicName = "heuristic"

// Heuristic extracts intent by matching the prompt against a vocabulary
// table. It has no external dependencies and cannot fail.
type Heuristic struct {
	vocab *Vocabulary
}

// NewHeuristic returns a keyword planner. A nil vocabulary selects the
// embedded default.
func NewHeuristic(vocab *Vocabulary) *Heuristic {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Heuristic{vocab: vocab}
}

func (h *Heuristic) Name() string { return HeuristicName }

// Plan satisfies Planner. The error is always nil.
func (h *Heuristic) Plan(_ context.Context, text string, mode models.Mode) (models.ParsedIntent, error) {
	return h.Extract(text, mode), nil
}

// Extract is a pure function of (text, mode). Every list in the result is
// non-nil, deduplicated and ordered by first mention. Unknown modes consult
// only the common vocabulary.
func (h *Heuristic) Extract(text string, mode models.Mode) models.ParsedIntent {
	lex := h.vocab.lexiconFor(mode)
	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	return models.ParsedIntent{
		Entities:   lex.entities.collect(tokens),
		Actions:    lex.actions.collect(tokens),
		Conditions: matchPatterns(lower, lex.conditions, nil),
		Outputs:    matchPatterns(lower, lex.outputs, lex.actions),
	}
}

type token struct {
	text  string
	start int
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(lower string) []token {
	locs := wordPattern.FindAllStringIndex(lower, -1)
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, token{text: lower[loc[0]:loc[1]], start: loc[0]})
	}
	return tokens
}

// collect walks the tokens left to right, preferring the longest phrase at
// each position.
func (ts *termSet) collect(tokens []token) []string {
	var found orderedSet
	for i := 0; i < len(tokens); {
		if canon, n := ts.matchPhrase(tokens, i); n > 0 {
			found.add(canon)
			i += n
			continue
		}
		if canon, ok := ts.lookup(tokens[i].text); ok {
			found.add(canon)
		}
		i++
	}
	return found.list()
}

type span struct {
	start, end int
}

// leadingFiller words are dropped from the front of pattern matches.
var leadingFiller = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true, "some": true, "and": true, "then": true,
}

// matchPatterns returns the non-overlapping matches of all patterns in text
// order. When verbs is set, a leading action word is stripped so "play hit
// animation" yields "hit animation".
func matchPatterns(lower string, patterns []*regexp.Regexp, verbs *termSet) []string {
	var spans []span
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			if loc[1] > loc[0] {
				spans = append(spans, span{loc[0], loc[1]})
			}
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var found orderedSet
	lastEnd := -1
	for _, sp := range spans {
		if sp.start < lastEnd {
			continue
		}
		lastEnd = sp.end

		fields := strings.Fields(lower[sp.start:sp.end])
		for len(fields) > 1 && leadingFiller[fields[0]] {
			fields = fields[1:]
		}
		if verbs != nil && len(fields) > 1 {
			if _, isVerb := verbs.lookup(fields[0]); isVerb {
				fields = fields[1:]
			}
		}
		found.add(strings.Join(fields, " "))
	}
	return found.list()
}

// orderedSet deduplicates while keeping insertion order.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

// list never returns nil.
func (s *orderedSet) list() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}

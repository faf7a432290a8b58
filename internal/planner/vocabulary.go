package planner

import (
	_ "embed"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/nevora/english-to-code/internal/models"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Section is one block of the vocabulary table.
type Section struct {
	Entities   []string `yaml:"entities"`
	Actions    []string `yaml:"actions"`
	Conditions []string `yaml:"conditions"`
	Outputs    []string `yaml:"outputs"`
}

// Table is the on-disk form of a vocabulary.
type Table struct {
	Common Section            `yaml:"common"`
	Modes  map[string]Section `yaml:"modes"`
}

// Vocabulary is a compiled Table. It is immutable and safe for concurrent use.
type Vocabulary struct {
	common *lexicon
	byMode map[models.Mode]*lexicon
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// DefaultVocabulary returns the vocabulary embedded in the binary.
func DefaultVocabulary() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := ParseVocabulary(defaultVocabularyYAML)
		if err != nil {
			panic(errors.Wrap(err, "embedded vocabulary is invalid"))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// LoadVocabulary reads and compiles a YAML vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read vocabulary %s", path)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, errors.Wrapf(err, "vocabulary %s", path)
	}
	return v, nil
}

// ParseVocabulary compiles a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, "parse vocabulary")
	}
	return Compile(table)
}

// Compile turns a Table into a Vocabulary, validating mode names and patterns.
func Compile(table Table) (*Vocabulary, error) {
	common, err := newLexicon(table.Common)
	if err != nil {
		return nil, errors.Wrap(err, "common section")
	}

	v := &Vocabulary{
		common: common,
		byMode: make(map[models.Mode]*lexicon, len(table.Modes)),
	}
	for name, section := range table.Modes {
		mode := models.Mode(name)
		if !mode.Valid() {
			return nil, errors.WithHintf(
				errors.Newf("unknown mode section %q", name),
				"valid sections: %s", strings.Join(models.ModeNames(), ", "))
		}
		lex, err := newLexicon(mergeSections(table.Common, section))
		if err != nil {
			return nil, errors.Wrapf(err, "%s section", name)
		}
		v.byMode[mode] = lex
	}
	return v, nil
}

// lexiconFor returns the common+mode lexicon, or just common for modes
// without a section.
func (v *Vocabulary) lexiconFor(mode models.Mode) *lexicon {
	if lex, ok := v.byMode[mode]; ok {
		return lex
	}
	return v.common
}

func mergeSections(a, b Section) Section {
	join := func(x, y []string) []string {
		out := make([]string, 0, len(x)+len(y))
		out = append(out, x...)
		return append(out, y...)
	}
	return Section{
		Entities:   join(a.Entities, b.Entities),
		Actions:    join(a.Actions, b.Actions),
		Conditions: join(a.Conditions, b.Conditions),
		Outputs:    join(a.Outputs, b.Outputs),
	}
}

type lexicon struct {
	entities   *termSet
	actions    *termSet
	conditions []*regexp.Regexp
	outputs    []*regexp.Regexp
}

func newLexicon(s Section) (*lexicon, error) {
	conditions, err := compilePatterns(s.Conditions)
	if err != nil {
		return nil, errors.Wrap(err, "conditions")
	}
	outputs, err := compilePatterns(s.Outputs)
	if err != nil {
		return nil, errors.Wrap(err, "outputs")
	}
	return &lexicon{
		entities:   newTermSet(s.Entities),
		actions:    newTermSet(s.Actions),
		conditions: conditions,
		outputs:    outputs,
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", p)
		}
		out = append(out, re)
	}
	return out, nil
}

// termSet holds single-word terms and multi-word phrases. Phrases are kept
// longest first so the longest match wins.
type termSet struct {
	words   map[string]string
	phrases [][]string
}

func newTermSet(terms []string) *termSet {
	ts := &termSet{words: make(map[string]string)}
	for _, term := range terms {
		fields := strings.Fields(strings.ToLower(term))
		switch len(fields) {
		case 0:
			continue
		case 1:
			ts.words[fields[0]] = fields[0]
		default:
			ts.phrases = append(ts.phrases, fields)
		}
	}
	sort.SliceStable(ts.phrases, func(i, j int) bool {
		return len(ts.phrases[i]) > len(ts.phrases[j])
	})
	return ts
}

// lookup resolves a token to its canonical term, trying inflected stems.
func (ts *termSet) lookup(word string) (string, bool) {
	for _, stem := range stems(word) {
		if canon, ok := ts.words[stem]; ok {
			return canon, true
		}
	}
	return "", false
}

// matchPhrase reports the phrase starting at tokens[i], if any, and how many
// tokens it spans. Only the last word of a phrase may be inflected.
func (ts *termSet) matchPhrase(tokens []token, i int) (string, int) {
	for _, phrase := range ts.phrases {
		if i+len(phrase) > len(tokens) {
			continue
		}
		ok := true
		for k, word := range phrase {
			tok := tokens[i+k].text
			if k == len(phrase)-1 {
				if !containsString(stems(tok), word) {
					ok = false
				}
			} else if tok != word {
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return strings.Join(phrase, " "), len(phrase)
		}
	}
	return "", 0
}

// stems returns the word followed by candidate base forms for common English
// plural and verb inflections.
func stems(word string) []string {
	out := []string{word}
	add := func(s string) {
		if len(s) >= 2 {
			out = append(out, s)
		}
	}
	undouble := func(s string) {
		n := len(s)
		if n >= 3 && s[n-1] == s[n-2] {
			add(s[:n-1])
		}
	}

	switch {
	case strings.HasSuffix(word, "ies"):
		add(strings.TrimSuffix(word, "ies") + "y")
		add(strings.TrimSuffix(word, "s"))
	case strings.HasSuffix(word, "es"):
		add(strings.TrimSuffix(word, "s"))
		add(strings.TrimSuffix(word, "es"))
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		add(strings.TrimSuffix(word, "s"))
	}
	if strings.HasSuffix(word, "ed") {
		base := strings.TrimSuffix(word, "ed")
		add(base)
		add(base + "e")
		undouble(base)
	}
	if strings.HasSuffix(word, "ing") {
		base := strings.TrimSuffix(word, "ing")
		add(base)
		add(base + "e")
		undouble(base)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

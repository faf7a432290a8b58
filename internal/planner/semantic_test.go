package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevora/english-to-code/internal/models"
)

type fakeGenerator struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	f.lastSystem, f.lastUser = system, user
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }
func (f *fakeGenerator) Close() error { return nil }

func TestNewSemanticRequiresGenerator(t *testing.T) {
	_, err := NewSemantic(nil)
	require.Error(t, err)
}

func TestSemanticPlan(t *testing.T) {
	gen := &fakeGenerator{reply: "```yaml\nentities: [Enemy, timer, enemy]\nactions: [spawn]\nconditions: [\"Timer  reaches zero\"]\noutputs: []\n```"}
	s, err := NewSemantic(gen)
	require.NoError(t, err)

	intent, err := s.Plan(context.Background(), "Spawn enemy when timer reaches zero", models.ModeGameplay)
	require.NoError(t, err)

	assert.Equal(t, []string{"enemy", "timer"}, intent.Entities)
	assert.Equal(t, []string{"spawn"}, intent.Actions)
	assert.Equal(t, []string{"timer reaches zero"}, intent.Conditions)
	assert.NotNil(t, intent.Outputs)
	assert.Empty(t, intent.Outputs)

	assert.NotEmpty(t, gen.lastSystem)
	assert.True(t, strings.Contains(gen.lastUser, "Spawn enemy when timer reaches zero"))
	assert.True(t, strings.Contains(gen.lastUser, "gameplay project"))
	assert.Equal(t, "semantic:fake", s.Name())
}

func TestSemanticPlanBackendError(t *testing.T) {
	s, err := NewSemantic(&fakeGenerator{err: errors.New("connection reset")})
	require.NoError(t, err)

	_, err = s.Plan(context.Background(), "jump", models.ModeGameplay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestParseIntentYAML(t *testing.T) {
	intent, err := ParseIntentYAML("entities: [player]\nactions: [jump]\nconditions: []\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"player"}, intent.Entities)
	assert.Equal(t, []string{}, intent.Outputs)

	_, err = ParseIntentYAML("")
	require.Error(t, err)

	_, err = ParseIntentYAML("entities: [player]\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actions, conditions")

	_, err = ParseIntentYAML("I think the player jumps.")
	require.Error(t, err)

	_, err = ParseIntentYAML("entities: {bad: map}\nactions: []\nconditions: []")
	require.Error(t, err)
}

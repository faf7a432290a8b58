package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/translator"
)

func submit(t *testing.T, m model, input string) (model, tea.Cmd) {
	t.Helper()
	m.textInput.SetValue(input)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	out, ok := next.(model)
	require.True(t, ok)
	return out, cmd
}

func TestCommands(t *testing.T) {
	m := NewModel(translator.New(), "python", "")
	assert.Equal(t, models.ModeGameplay, m.mode)

	m, _ = submit(t, m, "/target GDScript")
	assert.Equal(t, "gdscript", m.target)

	m, _ = submit(t, m, "/target cobol")
	assert.Equal(t, "gdscript", m.target)
	assert.Contains(t, m.notice, "Supported: cpp")

	m, _ = submit(t, m, "/mode web-backend")
	assert.Equal(t, models.ModeWebBackend, m.mode)

	m, _ = submit(t, m, "/mode arcade")
	assert.Equal(t, models.ModeWebBackend, m.mode)

	m, _ = submit(t, m, "/refine")
	assert.False(t, m.refine)
	assert.Equal(t, "nothing to refine yet", m.notice)

	m, _ = submit(t, m, "/plan")
	assert.Equal(t, "no plan yet", m.notice)

	_, cmd := submit(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTranslateRoundTrip(t *testing.T) {
	m := NewModel(translator.New(), "cpp", models.ModeGameplay)

	m, cmd := submit(t, m, "Spawn enemy when timer reaches zero")
	assert.Equal(t, stateLoading, m.state)
	require.NotNil(t, cmd)

	msg, ok := cmd().(translatedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	next, _ := m.Update(msg)
	m = next.(model)
	assert.Equal(t, stateInput, m.state)
	assert.Contains(t, m.lastCode, "class GeneratedFeature")
	require.NotNil(t, m.plan)
	assert.Equal(t, []string{"spawn"}, m.plan.Intent.Actions)
	assert.Contains(t, m.View(), "ACTIONS")

	m, _ = submit(t, m, "/refine")
	assert.True(t, m.refine)

	_, cmd = submit(t, m, "Also play a sound")
	refined := cmd().(translatedMsg)
	assert.Contains(t, refined.code, translator.ContextMarker)
}

func TestTranslateErrorState(t *testing.T) {
	m := NewModel(translator.New(), "cobol", models.ModeGameplay)
	m, cmd := submit(t, m, "jump")
	next, _ := m.Update(cmd())
	m = next.(model)
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "unsupported target")
}

package worldbuilder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{"environment": "WIDTH = 640", "characters": "class Hero: pass", "rules": "GRAVITY = 1", "events": "def on_tick(): pass", "main": "import pygame"}`

type stubGenerator struct {
	reply  string
	err    error
	system string
	user   string
}

func (s *stubGenerator) Generate(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.reply, s.err
}

func (s *stubGenerator) Name() string { return "stub" }
func (s *stubGenerator) Close() error { return nil }

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Stages{
		Environment: "A floating island",
		Characters:  "A fox",
		Rules:       "No flying",
		Events:      "Storm at noon",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "1) Environment:\nA floating island")
	assert.Contains(t, prompt, "4) Events:\nStorm at noon")
	assert.Contains(t, prompt, "keys: environment, characters, rules, events, main")
}

func TestParseResponse(t *testing.T) {
	world, err := ParseResponse(validReply)
	require.NoError(t, err)
	assert.Equal(t, "import pygame", world["main"])

	fenced, err := ParseResponse("```json\n" + validReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, world, fenced)
}

func TestParseResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", "sure, here it is", "not valid JSON"},
		{"array", `["environment"]`, "JSON object"},
		{"missing keys", `{"environment": "x", "main": "y"}`, "missing keys: characters, rules, events"},
		{"empty value", `{"environment": " ", "characters": "c", "rules": "r", "events": "e", "main": "m"}`, `"environment"`},
		{"non-string value", `{"environment": 1, "characters": "c", "rules": "r", "events": "e", "main": "m"}`, `"environment"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate(t *testing.T) {
	gen := &stubGenerator{reply: validReply}
	world, err := Generate(context.Background(), gen, Stages{Environment: "desert"})
	require.NoError(t, err)
	assert.Len(t, world, len(Sections))
	assert.Equal(t, SystemPrompt, gen.system)
	assert.Contains(t, gen.user, "desert")

	_, err = Generate(context.Background(), &stubGenerator{reply: "  "}, Stages{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")

	_, err = Generate(context.Background(), &stubGenerator{err: errors.New("rate limited")}, Stages{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestWorldWrite(t *testing.T) {
	world, err := ParseResponse(validReply)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "world")
	paths, err := world.Write(dir)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	assert.Equal(t, filepath.Join(dir, "environment.py"), paths[0])

	data, err := os.ReadFile(filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "import pygame", string(data))
}

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nevora/english-to-code/internal/config"
)

// Generator is a text-generation backend: one system prompt, one user
// message, one reply.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Name() string
	Close() error
}

// Gemini generates text with Google's Gemini models.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a Gemini-backed generator. It fails immediately when the
// API key is missing.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client:    client,
		modelName: model,
	}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.modelName }

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, system, user string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			return "", fmt.Errorf("unexpected response type from Gemini")
		}
		out.WriteString(string(text))
	}
	return out.String(), nil
}

// New picks a backend from configuration. "auto" prefers Gemini, then OpenAI.
// "heuristic" has no backend and returns an error, as does a missing key.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.Planner {
	case config.PlannerGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.PlannerOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case config.PlannerHeuristic:
		return nil, fmt.Errorf("planner %q does not use a text-generation backend", cfg.Planner)
	}

	if cfg.GeminiAPIKey != "" {
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return nil, fmt.Errorf("no text-generation credentials: set GEMINI_API_KEY or OPENAI_API_KEY")
}

// StripFences removes a surrounding markdown code fence such as ```yaml ... ```.
func StripFences(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	// Drop the info string (yaml, json, ...) on the opening line.
	if i := strings.IndexByte(clean, '\n'); i >= 0 {
		clean = clean[i+1:]
	} else {
		clean = ""
	}
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

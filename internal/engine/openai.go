package engine

import (
	"context"
	"fmt"

	openaigo "github.com/sashabaranov/go-openai"
)

// OpenAI generates text through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client *openaigo.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed generator. baseURL may be empty for the
// public API or point at any compatible endpoint.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = openaigo.GPT4oMini
	}

	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openaigo.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string { return "openai:" + o.model }

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) Generate(ctx context.Context, system, user string) (string, error) {
	var messages []openaigo.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content returned from %s", o.model)
	}
	return resp.Choices[0].Message.Content, nil
}

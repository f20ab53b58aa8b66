package translator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// LLMAdapter implements Adapter with an OpenAI-compatible chat completions API.
type LLMAdapter struct {
	client       *openai.Client
	name         string
	model        string
	systemPrompt string
}

// NewOpenAIAdapter creates an adapter backed by OpenAI.
func NewOpenAIAdapter(cfg Config) *LLMAdapter {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return newLLMAdapter("openai", clientConfig, model, cfg)
}

// NewGroqAdapter creates an adapter backed by Groq's OpenAI-compatible API.
func NewGroqAdapter(cfg Config) *LLMAdapter {
	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return newLLMAdapter("groq", clientConfig, model, cfg)
}

func newLLMAdapter(name string, clientConfig openai.ClientConfig, model string, cfg Config) *LLMAdapter {
	return &LLMAdapter{
		client:       openai.NewClientWithConfig(clientConfig),
		name:         name,
		model:        model,
		systemPrompt: BuildSystemPrompt(cfg.SourceLanguage, cfg.TargetLanguage),
	}
}

func (a *LLMAdapter) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-translator: API call failed after %v: %v", a.name, duration, err)
		return "", fmt.Errorf("%s chat completion: %w", a.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: %w", a.name, ErrEmptyResponse)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}

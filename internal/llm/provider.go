// Package llm talks to chat completion APIs that speak the OpenAI wire format.
package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for LLM interactions.
type Provider interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	// ResponseFormat can be set to "json_object" for JSON mode.
	ResponseFormat string `json:"response_format,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System and User build the two message roles the generator uses
func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

// ChatResponse is the response from a chat completion.
type ChatResponse struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	FinishReason     string `json:"finish_reason"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Config configures an LLM provider.
type Config struct {
	Provider string `mapstructure:"provider"` // openai, openrouter, ollama, gemini, custom
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
}

// Default endpoints per provider
const (
	OpenAIURL     = "https://api.openai.com"
	OpenRouterURL = "https://openrouter.ai/api"
	OllamaURL     = "http://localhost:11434"
	GeminiURL     = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg Config) (*Client, error) {
	switch cfg.Provider {
	case "openai":
		return newClient(withDefaultURL(cfg, OpenAIURL), "/v1"), nil
	case "openrouter":
		return newClient(withDefaultURL(cfg, OpenRouterURL), "/v1"), nil
	case "ollama":
		return newClient(withDefaultURL(cfg, OllamaURL), "/v1"), nil
	case "gemini":
		// Gemini's compatibility endpoint has no /v1 prefix.
		return newClient(withDefaultURL(cfg, GeminiURL), ""), nil
	case "custom":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom llm provider needs a base url")
		}
		return newClient(cfg, "/v1"), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

func withDefaultURL(cfg Config, url string) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = url
	}
	return cfg
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/modtl"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using an OpenAI-compatible chat API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL for compatible endpoints (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates one string using a chat completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &modtl.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &modtl.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceName := "the source language"
	if req.SourceLang != "" {
		sourceName = modtl.GetLanguageName(req.SourceLang)
	}
	targetName := modtl.GetLanguageName(req.TargetLang)

	return fmt.Sprintf(`# Role
You are a professional software localizer translating user-interface strings from %s to %s.

# Rules
- Translate the user message into natural, idiomatic %s suitable for a game or application UI.
- Do NOT translate placeholders or format specifiers (e.g., {0}, {name}, %%s, %%d, $1, ${var}).
- Do NOT translate markup tags, color codes, URLs, or file paths.
- Keep line breaks exactly where they are.
- If the text is already in %s or cannot be translated, return it unchanged.

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`, sourceName, targetName, targetName, targetName)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	content = strings.TrimSpace(content)

	var objResult map[string]any
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if s, ok := objResult["translation"].(string); ok {
			return s, nil
		}

		// Fallback: first element of a "translations" array
		if arr, ok := objResult["translations"].([]any); ok && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				return s, nil
			}
		}
	}

	return "", &modtl.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"500",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)

package pretranslate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates batches through OpenAI chat completions.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // API key
	Model       string  // default "gpt-4o-mini"
	Temperature float32 // default 0.3
	BaseURL     string  // optional custom endpoint
}

// NewOpenAIProvider creates an OpenAI-backed provider.
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

// Translate sends one batch and returns translations in input order.
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.userMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &ProviderError{
			Message:   "openai call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Message: "empty response from openai", Retryable: true}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) systemPrompt(req Request) string {
	source := req.SourceLocale
	if source == "" {
		source = "en"
	}

	return fmt.Sprintf(`You are a professional software localizer. Translate user interface strings from %s to %s.

Rules:
- Keep python-style placeholders such as %%(name)s and %%(count)d exactly as written.
- Keep HTML tags and attributes untranslated and in place.
- Keep the register neutral and suitable for a business application.
- If an item carries a "context" hint, use it to disambiguate and do not echo it back.

Return a JSON object with a single key "translations": an array of strings in the same order as the input.`, source, req.TargetLocale)
}

func (p *OpenAIProvider) userMessage(req Request) string {
	hasContexts := false
	for _, c := range req.Contexts {
		if c != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}
	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.Contexts) {
			items[i].Context = req.Contexts[i]
		}
	}
	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func parseResponse(content string, expected int) ([]string, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if arr, ok := obj["translations"].([]interface{}); ok {
			return toStringSlice(arr, expected)
		}
		for _, v := range obj {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expected)
			}
		}
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return toStringSlice(arr, expected)
	}

	return nil, &ProviderError{Message: "invalid response format", Retryable: false}
}

func toStringSlice(arr []interface{}, expected int) ([]string, error) {
	out := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	if len(out) != expected {
		return nil, &CountMismatchError{Expected: expected, Got: len(out)}
	}
	return out, nil
}

func isRetryableError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary", "503", "502", "429"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ Provider = (*OpenAIProvider)(nil)

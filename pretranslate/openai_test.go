package pretranslate

import (
	"errors"
	"strings"
	"testing"
)

func TestSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})
	prompt := p.systemPrompt(Request{SourceLocale: "en", TargetLocale: "de"})

	if !strings.Contains(prompt, "from en to de") {
		t.Error("prompt should name the language pair")
	}
	if !strings.Contains(prompt, "%(name)s") {
		t.Error("prompt should instruct to keep placeholders")
	}
	if !strings.Contains(prompt, `"translations"`) {
		t.Error("prompt should pin the response format")
	}
}

func TestUserMessage_ContextsSwitchFormat(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	plain := p.userMessage(Request{Texts: []string{"Save", "Cancel"}, Contexts: []string{"", ""}})
	if !strings.HasPrefix(plain, "[") {
		t.Errorf("no contexts should use the array format, got %s", plain)
	}

	hinted := p.userMessage(Request{Texts: []string{"Open"}, Contexts: []string{"menu action, not adjective"}})
	if !strings.Contains(hinted, `"context"`) {
		t.Errorf("contexts should use the object format, got %s", hinted)
	}
}

func TestParseResponse(t *testing.T) {
	got, err := parseResponse(`{"translations": ["Speichern", "Abbrechen"]}`, 2)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if got[0] != "Speichern" || got[1] != "Abbrechen" {
		t.Fatalf("got %v", got)
	}

	// Bare array fallback
	got, err = parseResponse(`["Speichern"]`, 1)
	if err != nil || got[0] != "Speichern" {
		t.Fatalf("bare array: %v %v", got, err)
	}

	// Wrong count is rejected
	_, err = parseResponse(`{"translations": ["nur eine"]}`, 2)
	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want CountMismatchError", err)
	}

	// Garbage is a non-retryable provider error
	_, err = parseResponse(`not json`, 1)
	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Retryable {
		t.Fatalf("err = %v, want non-retryable ProviderError", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(errors.New("429 Too Many Requests")) {
		t.Error("429 should be retryable")
	}
	if isRetryableError(errors.New("invalid api key")) {
		t.Error("auth failure should not be retryable")
	}
}

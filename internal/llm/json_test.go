package llm

import (
	"context"
	"errors"
	"testing"
)

type cannedProvider struct {
	text string
	err  error
}

func (c *cannedProvider) Name() string                           { return "canned" }
func (c *cannedProvider) IsAvailable(ctx context.Context) bool   { return true }
func (c *cannedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &CompletionResponse{Text: c.text, Model: "canned"}, nil
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"surrounding prose", `Here you go: {"a": 1} Hope that helps!`, `{"a": 1}`},
		{"json code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain code fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no object", "sorry, I cannot do that", ""},
		{"empty", "", ""},
		{"unbalanced", "{ only an opening", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompleteJSON_Decodes(t *testing.T) {
	provider := &cannedProvider{text: "```json\n{\"summary\": \"fine\"}\n```"}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := CompleteJSON(context.Background(), provider, CompletionRequest{Prompt: "x"}, &out); err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if out.Summary != "fine" {
		t.Errorf("summary = %q, want fine", out.Summary)
	}
}

func TestCompleteJSON_Errors(t *testing.T) {
	var out struct{}

	if err := CompleteJSON(context.Background(), nil, CompletionRequest{}, &out); err == nil {
		t.Error("expected error for nil provider")
	}

	failing := &cannedProvider{err: errors.New("boom")}
	if err := CompleteJSON(context.Background(), failing, CompletionRequest{}, &out); err == nil {
		t.Error("expected error when provider fails")
	}

	prose := &cannedProvider{text: "no json here"}
	if err := CompleteJSON(context.Background(), prose, CompletionRequest{}, &out); err == nil {
		t.Error("expected error when response has no JSON")
	}

	malformed := &cannedProvider{text: `{"a": }`}
	if err := CompleteJSON(context.Background(), malformed, CompletionRequest{}, &out); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

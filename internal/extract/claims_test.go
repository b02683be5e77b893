package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/avolkov/deepscout/internal/llm"
	"github.com/avolkov/deepscout/internal/model"
)

// mockProvider implements llm.Provider for testing
type mockProvider struct {
	text string
	err  error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Text: m.text, Model: "mock"}, nil
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return m.err == nil }

func testAngleResult() model.AngleResult {
	return model.AngleResult{
		Angle:  model.Angle{Label: "overview", Description: "general overview"},
		Status: model.AngleOK,
		Sources: []model.Source{
			{Title: "A", URL: "https://example.com/a", Snippet: "sa", Content: "page a", Fetched: true},
			{Title: "B", URL: "https://example.com/b", Snippet: "sb"},
		},
	}
}

func TestExtractor_ValidClaims(t *testing.T) {
	provider := &mockProvider{text: `{"claims": [
		{"text": "Fact one.", "urls": ["https://example.com/a"]},
		{"text": "Fact two.", "urls": ["https://example.com/a", "https://example.com/b"]}
	]}`}

	extractor := NewExtractor(provider, time.Second)
	claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult())

	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].Angle != "overview" {
		t.Errorf("claim angle = %q, want overview", claims[0].Angle)
	}
	if len(claims[1].URLs) != 2 {
		t.Errorf("expected 2 citations on second claim, got %d", len(claims[1].URLs))
	}
}

func TestExtractor_DiscardsUnknownURLs(t *testing.T) {
	// URLs outside the angle's source set are fabricated citations
	provider := &mockProvider{text: `{"claims": [
		{"text": "Grounded claim.", "urls": ["https://example.com/a", "https://evil.example.com/fake"]},
		{"text": "Fully fabricated claim.", "urls": ["https://evil.example.com/fake"]}
	]}`}

	extractor := NewExtractor(provider, time.Second)
	claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult())

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim to survive, got %d", len(claims))
	}
	for _, u := range claims[0].URLs {
		if strings.Contains(u, "evil") {
			t.Errorf("fabricated URL kept: %s", u)
		}
	}
	if len(claims[0].URLs) != 1 {
		t.Errorf("expected 1 valid citation, got %d", len(claims[0].URLs))
	}
}

func TestExtractor_DropsClaimsWithoutCitations(t *testing.T) {
	provider := &mockProvider{text: `{"claims": [
		{"text": "No citations at all.", "urls": []},
		{"text": "", "urls": ["https://example.com/a"]},
		{"text": "Good claim.", "urls": ["https://example.com/b"]}
	]}`}

	extractor := NewExtractor(provider, time.Second)
	claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult())

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].Text != "Good claim." {
		t.Errorf("unexpected surviving claim: %q", claims[0].Text)
	}
}

func TestExtractor_ProviderFailureYieldsEmpty(t *testing.T) {
	extractor := NewExtractor(&mockProvider{err: errors.New("timeout")}, time.Second)
	claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult())
	if len(claims) != 0 {
		t.Errorf("expected no claims on provider failure, got %d", len(claims))
	}
}

func TestExtractor_MalformedOutputYieldsEmpty(t *testing.T) {
	extractor := NewExtractor(&mockProvider{text: "claims: fact one (a), fact two (b)"}, time.Second)
	claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult())
	if len(claims) != 0 {
		t.Errorf("expected no claims on malformed output, got %d", len(claims))
	}
}

func TestExtractor_SkipsFailedAngle(t *testing.T) {
	provider := &mockProvider{text: `{"claims": [{"text": "x", "urls": ["https://example.com/a"]}]}`}
	extractor := NewExtractor(provider, time.Second)

	failed := model.AngleResult{
		Angle:  model.Angle{Label: "dead"},
		Status: model.AngleFailed,
	}
	if claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, failed); len(claims) != 0 {
		t.Errorf("expected no claims for failed angle, got %d", len(claims))
	}
}

func TestExtractor_NilProvider(t *testing.T) {
	extractor := NewExtractor(nil, time.Second)
	if claims := extractor.Extract(context.Background(), model.Topic{Subject: "t"}, testAngleResult()); claims != nil {
		t.Errorf("expected nil claims with no provider, got %v", claims)
	}
}

func TestBuildExtractPrompt_TrimsContent(t *testing.T) {
	ar := testAngleResult()
	ar.Sources[0].Content = strings.Repeat("x", promptContentChars+500)

	prompt := buildExtractPrompt(model.Topic{Subject: "t"}, ar)
	if strings.Contains(prompt, strings.Repeat("x", promptContentChars+1)) {
		t.Error("expected page content trimmed in prompt")
	}
	if !strings.Contains(prompt, "https://example.com/b") {
		t.Error("expected all source URLs present in prompt")
	}
}

func TestBuildExtractPrompt_TrimKeepsRuneBoundary(t *testing.T) {
	// 3-byte runes placed so the byte cap lands mid-rune
	ar := testAngleResult()
	ar.Sources[0].Content = strings.Repeat("語", promptContentChars)

	prompt := buildExtractPrompt(model.Topic{Subject: "t"}, ar)
	if !utf8.ValidString(prompt) {
		t.Error("prompt contains a split UTF-8 sequence")
	}
}

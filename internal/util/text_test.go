package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"no cap", "hello", 0, "hello"},
		{"under limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte boundary kept", "日本語", 6, "日本"},
		{"multibyte mid-rune backs up", "日本語", 7, "日本"},
		{"mixed text", "prix: 10€ net", 9, "prix: 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateText(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result is not valid UTF-8: %q", got)
			}
		})
	}
}

func TestTruncateTextLongMultibyte(t *testing.T) {
	s := strings.Repeat("ü", 1000) // 2 bytes per rune
	got := TruncateText(s, 1001)

	if len(got) != 1000 {
		t.Errorf("expected cut at 1000 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("result is not valid UTF-8")
	}
}

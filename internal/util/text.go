package util

import "unicode/utf8"

// TruncateText caps s at max bytes, backing up so a multi-byte UTF-8
// sequence is never split. max <= 0 means no cap.
func TruncateText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

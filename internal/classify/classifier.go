// Package classify turns raw user input into a normalized research topic.
// It is purely lexical: no network calls, no model calls, and it always
// succeeds. Anything it cannot recognize becomes a general research topic.
package classify

import (
	"strings"
	"unicode"

	"github.com/avolkov/deepscout/internal/model"
)

// interrogatives mark input as an open question rather than an entity
var interrogatives = map[string]bool{
	"who": true, "what": true, "when": true, "where": true, "why": true,
	"how": true, "is": true, "are": true, "was": true, "were": true,
	"does": true, "do": true, "did": true, "can": true, "could": true,
	"will": true, "would": true, "should": true, "which": true,
}

// companySuffixes are legal-form tokens that mark a company name
var companySuffixes = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"ltd": true, "llc": true, "plc": true, "ag": true, "gmbh": true,
	"sa": true, "se": true, "nv": true, "ab": true, "oyj": true,
	"co": true, "holdings": true, "group": true,
}

// financeKeywords force a SWOT angle even for longer phrasing
var financeKeywords = []string{
	"company", "stock", "equity", "market cap", "earnings", "investor",
	"ticker", "shares", "dividend", "valuation",
}

// Classify inspects raw input and decides whether it denotes a company or
// ticker-like entity. It produces the normalized topic consumed by the
// planner. Unclassifiable input defaults to a general question with no
// forced SWOT angle.
func Classify(rawInput string) model.Topic {
	subject := strings.Join(strings.Fields(rawInput), " ")
	if subject == "" {
		return model.Topic{Subject: "general research", ForceSwotAngle: false}
	}

	topic := model.Topic{Subject: strings.TrimSuffix(subject, "?")}

	if isQuestion(subject) {
		return topic
	}

	switch {
	case isTicker(subject):
		topic.ForceSwotAngle = true
		topic.Context = "stock ticker"
	case hasCompanySuffix(subject):
		topic.ForceSwotAngle = true
		topic.Context = "company"
	case hasFinanceKeyword(subject):
		topic.ForceSwotAngle = true
	case isEntityName(subject):
		topic.ForceSwotAngle = true
		topic.Context = "entity"
	}

	return topic
}

// isQuestion detects interrogative phrasing
func isQuestion(s string) bool {
	if strings.Contains(s, "?") {
		return true
	}
	fields := strings.Fields(strings.ToLower(s))
	return len(fields) > 0 && interrogatives[fields[0]]
}

// isTicker matches short all-caps symbols like VLKAF, TSLA or BRK.B
func isTicker(s string) bool {
	if strings.ContainsRune(s, ' ') {
		return false
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	total := 0
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if !unicode.IsUpper(r) {
				return false
			}
		}
		total += len(part)
	}
	return total >= 1 && total <= 6
}

// hasCompanySuffix checks for a trailing legal-form token
func hasCompanySuffix(s string) bool {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) < 2 {
		return false
	}
	last := strings.Trim(fields[len(fields)-1], ".,")
	return companySuffixes[last]
}

// hasFinanceKeyword checks for finance/company vocabulary anywhere in the input
func hasFinanceKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range financeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isEntityName matches short name-like phrases: at most three tokens, each
// starting with an uppercase letter, none interrogative. "Volkswagen"
// qualifies; "Future of quantum computing" does not.
func isEntityName(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 3 {
		return false
	}
	for _, f := range fields {
		if interrogatives[strings.ToLower(f)] {
			return false
		}
		r := []rune(f)[0]
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

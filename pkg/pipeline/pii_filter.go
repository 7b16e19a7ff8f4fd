package pipeline

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// piiPattern pairs a category name with its detector. The slice is ordered
// lexicographically by category so that redaction output is reproducible when
// patterns overlap.
type piiPattern struct {
	category string
	re       *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"credit_card", regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{"german_ssn", regexp.MustCompile(`\b\d{2}\s?\d{6}\s?[A-Z]\s?\d{3}\b`)}, // Sozialversicherungsnummer
	{"iban_de", regexp.MustCompile(`(?i)\bDE\d{2}\s?\d{4}\s?\d{4}\s?\d{4}\s?\d{4}\s?\d{2}\b`)},
	{"phone_international", regexp.MustCompile(`\+?\d{1,3}[\s.-]?\(?\d{2,4}\)?[\s.-]?\d{3,4}[\s.-]?\d{3,4}`)},
}

// DetectPII returns the category names of all PII shapes present in the text
// (empty if clean). Detection is a membership test per category, not an
// extraction of every match.
func DetectPII(text string) []string {
	var detected []string
	for _, p := range piiPatterns {
		if p.re.MatchString(text) {
			detected = append(detected, p.category)
		}
	}
	return detected
}

// SanitizeQuery replaces every match of every pattern with a category-specific
// redaction token. Patterns are applied in the fixed lexicographic order.
func SanitizeQuery(text string) string {
	sanitized := text
	for _, p := range piiPatterns {
		sanitized = p.re.ReplaceAllString(sanitized, "[REDACTED_"+strings.ToUpper(p.category)+"]")
	}
	return sanitized
}

// PIIFilter is the first pipeline stage. It is the only point that must run
// before any data leaves the process boundary: nothing reaches the router,
// agents or synthesizer except through its output.
type PIIFilter struct {
	logger *log.Logger
}

func NewPIIFilter(logger *log.Logger) *PIIFilter {
	return &PIIFilter{logger: logger}
}

// Run scans the query for PII and sanitizes it if any category fired.
func (f *PIIFilter) Run(s *State) Update {
	if s.Query == "" {
		return Update{PIIDetected: ptr(false)}
	}

	detected := DetectPII(s.Query)
	if len(detected) == 0 {
		return Update{PIIDetected: ptr(false)}
	}

	f.logger.Printf("[PII] Detected in query: %v", detected)
	return Update{
		Query:       ptr(SanitizeQuery(s.Query)),
		PIIDetected: ptr(true),
		Errors:      []string{fmt.Sprintf("PII detected and redacted: %s", strings.Join(detected, ", "))},
	}
}

package pipeline

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestDetectPII(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory string
	}{
		{
			name:         "email",
			text:         "Contact me at user@example.com",
			wantCategory: "email",
		},
		{
			name:         "phone international",
			text:         "Call +49 151 1234 5678",
			wantCategory: "phone_international",
		},
		{
			name:         "credit card",
			text:         "Card: 4111-1111-1111-1111",
			wantCategory: "credit_card",
		},
		{
			name:         "german ssn",
			text:         "SSN: 12 345678 A 123",
			wantCategory: "german_ssn",
		},
		{
			name:         "iban",
			text:         "IBAN: DE89 3704 0044 0532 0130 00",
			wantCategory: "iban_de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected := DetectPII(tt.text)
			found := false
			for _, category := range detected {
				if category == tt.wantCategory {
					found = true
				}
			}
			if !found {
				t.Errorf("DetectPII(%q) = %v, want it to contain %q", tt.text, detected, tt.wantCategory)
			}
		})
	}
}

func TestDetectPIICleanText(t *testing.T) {
	if detected := DetectPII("What is the ML pipeline architecture?"); len(detected) != 0 {
		t.Errorf("DetectPII on clean text = %v, want empty", detected)
	}
}

func TestDetectPIIMultipleCategories(t *testing.T) {
	detected := DetectPII("Email: a@b.com, Phone: +49 151 1234 5678")
	assert.Contains(t, detected, "email")
	assert.Contains(t, detected, "phone_international")
}

func TestSanitizeQuery(t *testing.T) {
	result := SanitizeQuery("Contact user@example.com for details")
	assert.Contains(t, result, "[REDACTED_EMAIL]")
	assert.NotContains(t, result, "user@example.com")
}

func TestSanitizeQueryPreservesNonPII(t *testing.T) {
	input := "What is the architecture of our ML pipeline?"
	assert.Equal(t, input, SanitizeQuery(input))
}

func TestSanitizeQueryIdempotent(t *testing.T) {
	once := SanitizeQuery("My email is john.doe@company.com and card 4111 1111 1111 1111")
	twice := SanitizeQuery(once)
	assert.Equal(t, once, twice)
}

func TestPIIFilterRun(t *testing.T) {
	filter := NewPIIFilter(testLogger())

	t.Run("clean query not altered", func(t *testing.T) {
		s := &State{Query: "What is vector search?"}
		u := filter.Run(s)

		require.NotNil(t, u.PIIDetected)
		assert.False(t, *u.PIIDetected)
		assert.Nil(t, u.Query, "query must not be overwritten for clean input")
		assert.Empty(t, u.Errors)
	})

	t.Run("pii detected and sanitized", func(t *testing.T) {
		s := &State{Query: "My email is john.doe@company.com and my phone is +49 151 1234 5678"}
		u := filter.Run(s)

		require.NotNil(t, u.PIIDetected)
		assert.True(t, *u.PIIDetected)
		require.NotNil(t, u.Query)
		assert.Contains(t, *u.Query, "[REDACTED_EMAIL]")
		assert.NotContains(t, *u.Query, "john.doe@company.com")
		require.Len(t, u.Errors, 1)
		assert.True(t, strings.HasPrefix(u.Errors[0], "PII detected and redacted:"))
	})

	t.Run("empty query", func(t *testing.T) {
		s := &State{}
		u := filter.Run(s)

		require.NotNil(t, u.PIIDetected)
		assert.False(t, *u.PIIDetected)
		assert.Nil(t, u.Query)
		assert.Empty(t, u.Errors)
	})
}

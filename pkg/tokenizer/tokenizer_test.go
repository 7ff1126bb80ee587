package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minExpect int
		maxExpect int
	}{
		{"empty", "", 0, 0},
		{"single word", "hello", 1, 3},
		{"short sentence", "Go is a great programming language", 5, 15},
		{"longer text", strings.Repeat("word ", 100), 80, 200},
		// cl100k_base calibration cases
		{"pangram calibration", "The quick brown fox jumps over the lazy dog", 8, 15},
		{"code-like text", "func foo() { return nil }", 4, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := EstimateTokens(tt.text)
			assert.GreaterOrEqual(t, tokens, tt.minExpect)
			assert.LessOrEqual(t, tokens, tt.maxExpect)
		})
	}
}

func TestTruncateToTokenBudget(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		check  func(t *testing.T, result string)
	}{
		{
			name:   "within budget",
			text:   "short text",
			budget: 100,
			check: func(t *testing.T, result string) {
				assert.Equal(t, "short text", result)
			},
		},
		{
			name:   "exceeds budget",
			text:   strings.Repeat("word ", 200),
			budget: 10,
			check: func(t *testing.T, result string) {
				assert.Less(t, len(result), len(strings.Repeat("word ", 200)))
				assert.True(t, strings.HasSuffix(result, "..."))
			},
		},
		{
			name:   "zero budget",
			text:   "some text",
			budget: 0,
			check: func(t *testing.T, result string) {
				assert.Equal(t, "", result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateToTokenBudget(tt.text, tt.budget)
			tt.check(t, result)
		})
	}
}

func TestTruncateToTokenBudgetSmallBudget(t *testing.T) {
	original := strings.Repeat("word ", 100)
	result := TruncateToTokenBudget(original, 10)
	assert.Less(t, len(result), len(original))
	assert.LessOrEqual(t, EstimateTokens(result), 30)
}

package output

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultPromptBudget bounds the code context shipped to the AI oracle in a
// single prompt. Callers with bigger context windows can pass their own
// budget.
const DefaultPromptBudget = 8000

// CharsPerToken is the approximate character-to-token ratio. English prose
// runs close to 4 characters per token; code lands near the same number once
// identifiers and syntax average out.
const CharsPerToken = 4.0

// EstimateTokens returns an approximate token count for the given text using
// a character-based heuristic. Good enough for budgeting prompt context; not
// a substitute for the provider's tokenizer.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}

	runeCount := utf8.RuneCountInString(text)
	tokens := float64(runeCount) / CharsPerToken

	return int(tokens + 0.5)
}

// FormatTokenCount formats a token count for display. Counts >= 1000 are
// formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// TruncateToBudget trims text so its estimated token count fits the budget,
// cutting at a line boundary where possible. A budget <= 0 uses
// DefaultPromptBudget.
func TruncateToBudget(text string, budget int) string {
	if budget <= 0 {
		budget = DefaultPromptBudget
	}
	if EstimateTokens(text) <= budget {
		return text
	}

	maxRunes := int(float64(budget) * CharsPerToken)
	runes := []rune(text)
	if maxRunes >= len(runes) {
		return text
	}
	cut := string(runes[:maxRunes])

	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "\n... (truncated)"
}

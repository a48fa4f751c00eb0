// Package mood classifies a situation into one of a fixed set of response
// categories used to pick mood-matched animations.
//
// The primary path asks the AI gateway to emit exactly one label; when the
// AI call itself fails the selector falls back to deterministic keyword
// matching so an animation can still be chosen offline.
package mood

import (
	"context"
	"log/slog"
	"strings"

	"github.com/RomaniumSSS/My-first-project/internal/genai"
)

// Category is one of the closed set of mood response labels.
type Category string

const (
	CategorySupport     Category = "support"
	CategoryBreathe     Category = "breathe"
	CategoryCelebration Category = "celebration_small"
	CategoryYouGotThis  Category = "you_got_this"
	CategoryRest        Category = "rest"
)

// CategoryNeutral is the default used when classification cannot decide.
const CategoryNeutral = CategoryYouGotThis

// validCategories is the closed label set; classification output must match
// one of these exactly after trimming whitespace.
var validCategories = map[Category]bool{
	CategorySupport:     true,
	CategoryBreathe:     true,
	CategoryCelebration: true,
	CategoryYouGotThis:  true,
	CategoryRest:        true,
}

// keywordRule maps substrings of the context to a category. Rules are
// checked in order; the first match wins.
type keywordRule struct {
	keywords []string
	category Category
}

var keywordRules = []keywordRule{
	{[]string{"дыхан", "выдох"}, CategoryBreathe},
	{[]string{"сделал", "получилось"}, CategoryCelebration},
	{[]string{"тяжело", "плохо"}, CategorySupport},
	{[]string{"отдых", "не сейчас"}, CategoryRest},
}

const classifySystemPrompt = "Ты выбираешь категорию реакции для поддерживающего бота. " +
	"Ответь ровно одним словом из списка, без пояснений: " +
	"support, breathe, celebration_small, you_got_this, rest."

// completer is the AI surface the selector depends on. Unlike flow callers
// it needs the error-returning variant to detect gateway failure.
type completer interface {
	Complete(ctx context.Context, messages []genai.Message, opts genai.Options) (string, error)
}

// Selector classifies situations into mood categories.
type Selector struct {
	ai completer
}

// NewSelector creates a Selector backed by the given AI client.
func NewSelector(ai completer) *Selector {
	return &Selector{ai: ai}
}

// Classify resolves the mood category for a situation. moodText optionally
// carries the user's own words and is appended to the classified context.
func (s *Selector) Classify(ctx context.Context, situation, moodText string) Category {
	combined := situation
	if moodText != "" {
		combined = situation + "\nСлова пользователя: " + moodText
	}

	if s.ai != nil {
		label, err := s.ai.Complete(ctx, []genai.Message{
			{Role: genai.RoleSystem, Content: classifySystemPrompt},
			{Role: genai.RoleUser, Content: combined},
		}, genai.Options{Temperature: 0, MaxTokens: 10})
		if err == nil {
			return normalizeLabel(label)
		}
		slog.Warn("Mood Classify AI call failed, using keyword fallback", "error", err)
	}

	return KeywordFallback(combined)
}

// normalizeLabel trims the AI output and accepts it only on an exact match
// against the closed label set; anything else becomes the neutral default.
func normalizeLabel(label string) Category {
	trimmed := Category(strings.TrimSpace(label))
	if validCategories[trimmed] {
		return trimmed
	}
	slog.Debug("Mood Classify label outside valid set, using neutral default", "label", label)
	return CategoryNeutral
}

// KeywordFallback deterministically maps a context string to a category by
// substring matching in fixed priority order.
func KeywordFallback(context string) Category {
	lowered := strings.ToLower(context)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.category
			}
		}
	}
	return CategoryNeutral
}

package domain

import "strings"

// CategoryUnknown is returned when classification degrades.
const CategoryUnknown = "unknown"

// EmailCategories is the closed candidate-label set handed to the
// zero-shot classifier. Dotted labels: main category before the dot,
// refinement after it.
var EmailCategories = []string{
	"work.task", "work.meeting", "work.update",
	"personal.finance", "personal.health", "personal.family",
	"social.event", "social.networking",
	"promotion.marketing", "promotion.discount", "promotion.newsletter",
	"update.newsletter", "update.notification",
	"spam",
}

var validCategories = func() map[string]bool {
	m := make(map[string]bool, len(EmailCategories)+1)
	for _, c := range EmailCategories {
		m[c] = true
	}
	m[CategoryUnknown] = true
	return m
}()

// IsValidCategory reports whether cat belongs to the closed label set
// (or is the unknown sentinel).
func IsValidCategory(cat string) bool {
	return validCategories[cat]
}

// ValidateCategory returns cat when valid, unknown otherwise.
func ValidateCategory(cat string) string {
	if validCategories[cat] {
		return cat
	}
	return CategoryUnknown
}

// MainCategory returns the dot-prefix of a label ("work.task" -> "work").
// Labels without a dot are their own main category.
func MainCategory(cat string) string {
	if i := strings.Index(cat, "."); i >= 0 {
		return cat[:i]
	}
	return cat
}

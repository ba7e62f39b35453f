// Package analysis implements the email scoring pipeline: category
// classification, urgency scoring and importance scoring, fused into a
// single analysis result with an archive decision.
package analysis

import "regexp"

// =============================================================================
// Static Signal Tables
// =============================================================================
// All tables are read-only after init. Matching is case-insensitive
// substring containment on the lowercased text.

// promotionKeywords maps promotional vocabulary to its weight. The raw
// promo score is the sum of matched weights divided by 3.0, clamped to 1.
var promotionKeywords = map[string]float64{
	"discount":      1.0,
	"sale":          1.0,
	"offer":         0.9,
	"promo":         0.9,
	"limited time":  0.8,
	"exclusive":     0.8,
	"off":           0.7,
	"deal":          0.7,
	"subscribe":     0.6,
	"unsubscribe":   0.6,
	"newsletter":    0.6,
	"marketing":     0.5,
	"advertisement": 0.5,
	"coupon":        0.5,
}

// promotionalSenderFragments are local-part fragments that mark a sender
// address as promotional. Informational only; they never move a score.
var promotionalSenderFragments = []string{
	"marketing", "newsletter", "news", "offers", "info", "noreply",
	"promotions", "deals", "sales", "updates", "notifications",
}

// urgencyKeywords maps urgency vocabulary to its weight. Subject matches
// count at full weight; body-only matches count at half.
var urgencyKeywords = map[string]float64{
	"critical":        1.0,
	"emergency":       1.0,
	"urgent":          0.9,
	"asap":            0.9,
	"immediately":     0.8,
	"deadline":        0.8,
	"time-sensitive":  0.7,
	"action required": 0.7,
	"important":       0.6,
	"priority":        0.6,
	"quick":           0.5,
	"fast":            0.5,
	"soon":            0.4,
	"reminder":        0.3,
}

// lowUrgencyPhrases each subtract 0.2 from the final urgency score,
// floored at -0.6 total.
var lowUrgencyPhrases = []string{
	"no rush",
	"when you have time",
	"at your convenience",
	"fyi",
	"for your information",
	"update only",
	"just letting you know",
}

// timeSensitivePhrases each add 0.15 to the time-sensitivity component.
var timeSensitivePhrases = []string{
	"today", "tomorrow", "this week", "by end of day", "by eod", "by morning",
}

// deadlinePatterns detect explicit deadline constructions ("due by the
// 3rd of mar", "before 12/24", "by friday"). The first match adds a flat
// 0.2; further matches add nothing.
var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:due|by|before)(?:\s+the)?\s+(\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec))`),
	regexp.MustCompile(`\b(?:due|by|before)(?:\s+the)?\s+(\d{1,2}/\d{1,2}(?:/\d{2,4})?)`),
	regexp.MustCompile(`\b(?:due|by|before)(?:\s+the)?\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`),
}

// vipSenderFragments raise the importance baseline when the sender
// address contains one. Only the first match counts.
var vipSenderFragments = []string{
	"boss", "ceo", "director", "manager", "supervisor", "client",
}

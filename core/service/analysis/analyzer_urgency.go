package analysis

import (
	"context"
	"strings"
	"time"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/logger"
)

// =============================================================================
// Urgency Scorer
// =============================================================================

// Weights of the five urgency signals. They sum to 1.0; the low-urgency
// modifier is applied on top as a signed offset before clamping.
const (
	urgencyKeywordWeight   = 0.5
	urgencySentimentWeight = 0.2
	urgencyTimeWeight      = 0.2
	urgencyRecencyWeight   = 0.1
)

const (
	// defaultNegativeSentiment is used when the classifier response
	// carries no NEGATIVE label.
	defaultNegativeSentiment = 0.3

	// recencyWindow bounds the recency bonus to fresh mail.
	recencyWindow = 12 * time.Hour

	lowUrgencyPenalty = -0.2
	lowUrgencyFloor   = -0.6

	timePhraseBonus    = 0.15
	deadlineMatchBonus = 0.2
)

// UrgencyScorer blends keyword signals, low-urgency dampening, external
// sentiment, deadline detection and message recency into one score.
type UrgencyScorer struct {
	sentiment out.SentimentClassifier

	// now is swappable for deterministic recency tests.
	now func() time.Time
}

func NewUrgencyScorer(sentiment out.SentimentClassifier) *UrgencyScorer {
	return &UrgencyScorer{sentiment: sentiment, now: time.Now}
}

// Score computes the urgency of one message. The sentiment call is the
// only fallible step; its failure degrades the whole scorer to the
// neutral medium/0.5 result with no factors.
func (s *UrgencyScorer) Score(ctx context.Context, msg *domain.EmailMessage) *domain.UrgencyResult {
	sentimentScore, err := s.negativeSentiment(ctx, msg.FullText())
	if err != nil {
		logger.WithMessageID(msg.MessageID).WithError(err).Warn("urgency scoring degraded, using neutral fallback")
		return &domain.UrgencyResult{Urgency: domain.LevelMedium, Score: 0.5}
	}

	subjectLower := strings.ToLower(msg.Subject)
	bodyLower := strings.ToLower(msg.Snippet)
	textLower := strings.ToLower(msg.FullText())

	keywordScore := urgencyKeywordScore(subjectLower, bodyLower)
	lowModifier := lowUrgencyModifier(textLower)
	timeScore := timeUrgency(textLower)
	recency := s.recencyBonus(msg)

	score := keywordScore*urgencyKeywordWeight +
		sentimentScore*urgencySentimentWeight +
		timeScore*urgencyTimeWeight +
		recency*urgencyRecencyWeight +
		lowModifier
	score = domain.ClampScore(score)

	return &domain.UrgencyResult{
		Urgency: domain.LevelFromScore(score),
		Score:   score,
		Factors: map[string]float64{
			"keyword_score":        keywordScore,
			"sentiment_score":      sentimentScore,
			"time_urgency":         timeScore,
			"recency":              recency,
			"low_urgency_modifier": lowModifier,
		},
	}
}

// urgencyKeywordScore sums subject matches at full weight and body-only
// matches at half weight, then halves the body contribution once more in
// the combine so subject vocabulary dominates.
func urgencyKeywordScore(subjectLower, bodyLower string) float64 {
	var subjectScore, bodyScore float64
	for kw, weight := range urgencyKeywords {
		if strings.Contains(subjectLower, kw) {
			subjectScore += weight
		} else if strings.Contains(bodyLower, kw) {
			bodyScore += weight * 0.5
		}
	}
	score := subjectScore + bodyScore*0.5
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// lowUrgencyModifier accumulates -0.2 per matched phrase, floored at -0.6.
func lowUrgencyModifier(textLower string) float64 {
	var modifier float64
	for _, phrase := range lowUrgencyPhrases {
		if strings.Contains(textLower, phrase) {
			modifier += lowUrgencyPenalty
		}
	}
	if modifier < lowUrgencyFloor {
		modifier = lowUrgencyFloor
	}
	return modifier
}

// timeUrgency adds 0.15 per distinct immediacy phrase, plus a flat 0.2
// once if any deadline pattern matches.
func timeUrgency(textLower string) float64 {
	var score float64
	for _, phrase := range timeSensitivePhrases {
		if strings.Contains(textLower, phrase) {
			score += timePhraseBonus
		}
	}
	for _, pattern := range deadlinePatterns {
		if pattern.MatchString(textLower) {
			score += deadlineMatchBonus
			break
		}
	}
	return score
}

// dateLayouts are tried in order when parsing the provider timestamp.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
}

// recencyBonus rewards mail younger than 12 hours with a linearly
// decaying bonus. An unparseable date contributes nothing.
func (s *UrgencyScorer) recencyBonus(msg *domain.EmailMessage) float64 {
	var sent time.Time
	var err error
	for _, layout := range dateLayouts {
		sent, err = time.Parse(layout, msg.Date)
		if err == nil {
			break
		}
	}
	if err != nil {
		logger.WithMessageID(msg.MessageID).Debug("unparseable message date %q, recency bonus skipped", msg.Date)
		return 0
	}

	age := s.now().Sub(sent)
	if age < 0 || age >= recencyWindow {
		return 0
	}
	bonus := 0.2 - age.Hours()/60.0
	if bonus < 0 {
		return 0
	}
	return bonus
}

// negativeSentiment returns the NEGATIVE label score from the external
// classifier, or a moderate default when that label is absent.
func (s *UrgencyScorer) negativeSentiment(ctx context.Context, text string) (float64, error) {
	scores, err := s.sentiment.ClassifySentiment(ctx, text)
	if err != nil {
		return 0, err
	}
	for _, sc := range scores {
		if strings.EqualFold(sc.Label, "NEGATIVE") {
			return sc.Score, nil
		}
	}
	return defaultNegativeSentiment, nil
}

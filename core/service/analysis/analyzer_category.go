package analysis

import (
	"context"
	"strings"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/logger"
)

// =============================================================================
// Category Classifier
// =============================================================================

const (
	// promoOverrideThreshold forces promotion.marketing when the keyword
	// score exceeds it and the model disagrees.
	promoOverrideThreshold = 0.7

	// hybridConfidenceCeiling gates the second-opinion boost.
	hybridConfidenceCeiling = 0.6

	// materialityThreshold gates reporting of the alternative category
	// and the promotion score.
	materialityThreshold = 0.3
)

// CategoryClassifier fuses a zero-shot model ranking with the keyword
// promotion score into a single category verdict.
type CategoryClassifier struct {
	zeroShot out.ZeroShotClassifier
}

func NewCategoryClassifier(zeroShot out.ZeroShotClassifier) *CategoryClassifier {
	return &CategoryClassifier{zeroShot: zeroShot}
}

// Classify scores the combined subject and snippet against the closed
// category set. Any model failure degrades to unknown with zero
// confidence; it never propagates an error.
func (c *CategoryClassifier) Classify(ctx context.Context, msg *domain.EmailMessage) *domain.CategoryResult {
	text := msg.FullText()
	promoScore := promotionScore(text)

	ranked, err := c.zeroShot.ClassifyText(ctx, text, domain.EmailCategories)
	if err != nil || len(ranked.Labels) == 0 || len(ranked.Scores) == 0 {
		logger.WithMessageID(msg.MessageID).Warn("category classification degraded: %s", errString(err))
		return &domain.CategoryResult{Category: domain.CategoryUnknown, Confidence: 0}
	}

	category := domain.ValidateCategory(ranked.Labels[0])
	confidence := ranked.Scores[0]

	// Strong promotional vocabulary overrides a non-promotional model
	// verdict. The model ranking below the top label is ignored here.
	if promoScore > promoOverrideThreshold && !strings.HasPrefix(category, "promotion.") {
		category = "promotion.marketing"
		if promoScore > confidence {
			confidence = promoScore
		}
	}

	var alternative *string
	if len(ranked.Labels) > 1 && len(ranked.Scores) > 1 && ranked.Scores[1] > materialityThreshold {
		second := ranked.Labels[1]
		secondScore := ranked.Scores[1]
		alternative = &second

		// A close runner-up in the same main category reinforces the
		// verdict. A runner-up from a different main category changes
		// nothing, not even the confidence.
		if confidence < hybridConfidenceCeiling &&
			domain.MainCategory(category) == domain.MainCategory(second) {
			confidence = domain.ClampScore(confidence + secondScore*0.5)
		}
	}

	result := &domain.CategoryResult{
		Category:    category,
		Confidence:  confidence,
		Alternative: alternative,
	}
	if promoScore > materialityThreshold {
		result.PromotionScore = &promoScore
	}
	return result
}

// promotionScore sums the weights of all matched promotion keywords,
// normalized by 3.0 and clamped to [0, 1]. Matching is substring
// containment on the lowercased text, so "off" also fires inside
// "offer"; the normalization constant absorbs that.
func promotionScore(text string) float64 {
	lower := strings.ToLower(text)
	var sum float64
	for kw, weight := range promotionKeywords {
		if strings.Contains(lower, kw) {
			sum += weight
		}
	}
	return domain.ClampScore(sum / 3.0)
}

// promotionalSender reports whether the local part of the sender address
// contains a known promotional fragment. Diagnostic only.
func promotionalSender(msg *domain.EmailMessage) bool {
	local := msg.SenderLocalPart()
	if local == "" {
		return false
	}
	for _, frag := range promotionalSenderFragments {
		if strings.Contains(local, frag) {
			return true
		}
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return "empty model response"
	}
	return err.Error()
}

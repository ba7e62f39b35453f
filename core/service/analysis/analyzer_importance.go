package analysis

import (
	"strings"

	"analyzer_server/core/domain"
)

// =============================================================================
// Importance Scorer
// =============================================================================

const (
	importanceBaseline = 0.5

	vipSenderBonus     = 0.2
	directAddressBonus = 0.1
	optimalLengthBonus = 0.1
	shortLengthPenalty = -0.1
	threadReplyBonus   = 0.1

	questionBonus    = 0.05
	questionBonusCap = 0.2

	optimalLengthMin = 100
	optimalLengthMax = 1500
	shortLengthMax   = 50
)

// ImportanceScorer rates a message from sender, subject and content
// heuristics. It is purely local and never calls an external service.
type ImportanceScorer struct{}

func NewImportanceScorer() *ImportanceScorer {
	return &ImportanceScorer{}
}

// Score starts at the 0.5 baseline and applies each bonus or penalty
// independently before clamping.
func (s *ImportanceScorer) Score(msg *domain.EmailMessage) *domain.ImportanceResult {
	senderLower := strings.ToLower(msg.From)
	subjectLower := strings.ToLower(msg.Subject)
	contentLower := strings.ToLower(msg.Snippet)

	factors := map[string]float64{}
	score := importanceBaseline

	for _, frag := range vipSenderFragments {
		if strings.Contains(senderLower, frag) {
			score += vipSenderBonus
			factors["vip_sender"] = vipSenderBonus
			break
		}
	}

	if directlyAddressed(contentLower) {
		score += directAddressBonus
		factors["direct_address"] = directAddressBonus
	}

	switch n := len(msg.Snippet); {
	case n >= optimalLengthMin && n <= optimalLengthMax:
		score += optimalLengthBonus
		factors["optimal_length"] = optimalLengthBonus
	case n < shortLengthMax:
		score += shortLengthPenalty
		factors["short_content"] = shortLengthPenalty
	}

	if strings.Contains(subjectLower, "re:") {
		score += threadReplyBonus
		factors["thread_reply"] = threadReplyBonus
	}

	if q := strings.Count(msg.Snippet, "?"); q > 0 {
		bonus := float64(q) * questionBonus
		if bonus > questionBonusCap {
			bonus = questionBonusCap
		}
		score += bonus
		factors["questions"] = bonus
	}

	score = domain.ClampScore(score)
	return &domain.ImportanceResult{
		Importance: domain.LevelFromScore(score),
		Score:      score,
		Factors:    factors,
	}
}

// directlyAddressed reports a salutation cue near the top of the
// content: "dear" within the first 100 characters or "hi " within the
// first 50.
func directlyAddressed(contentLower string) bool {
	head := contentLower
	if len(head) > 100 {
		head = head[:100]
	}
	if strings.Contains(head, "dear") {
		return true
	}
	if len(contentLower) > 50 {
		contentLower = contentLower[:50]
	}
	return strings.Contains(contentLower, "hi ")
}

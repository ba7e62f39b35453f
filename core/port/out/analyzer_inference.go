// Package out defines the outbound ports of the analyzer.
package out

import "context"

// ZeroShotResult holds candidate labels ranked by score, descending.
// Labels and Scores are parallel slices.
type ZeroShotResult struct {
	Labels []string
	Scores []float64
}

// ZeroShotClassifier scores a text against a caller-supplied label set.
// Implementations call a remote model; callers must bound the call with
// a context deadline and treat expiry as any other failure.
type ZeroShotClassifier interface {
	ClassifyText(ctx context.Context, text string, labels []string) (*ZeroShotResult, error)
}

// SentimentScore is one polarity label with its score.
type SentimentScore struct {
	Label string
	Score float64
}

// SentimentClassifier returns polarity scores for a text. Only the
// NEGATIVE entry is consulted by the urgency scorer.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) ([]SentimentScore, error)
}

package out

import (
	"context"

	"analyzer_server/core/domain"
)

// Event topics emitted by the analyzer.
const (
	TopicEmailAnalyzed = "email.analyzed"
	TopicAnalysisError = "email.analysis.error"
	TopicSummarySent   = "email.summary.sent"
)

// AnalysisError is the payload of an email.analysis.error event.
// Error is a human-readable description, not a structured code.
type AnalysisError struct {
	MessageID string `json:"messageId"`
	ThreadID  string `json:"threadId"`
	Error     string `json:"error"`
}

// SummarySent is the payload of an email.summary.sent event.
type SummarySent struct {
	Date          string               `json:"date"`
	Summary       *domain.EmailSummary `json:"summary"`
	SentToDiscord bool                 `json:"sentToDiscord"`
}

// EventPublisher emits analyzer events to the outbound transport.
type EventPublisher interface {
	PublishAnalyzed(ctx context.Context, result *domain.AnalysisResult) error
	PublishAnalysisError(ctx context.Context, payload *AnalysisError) error
	PublishSummarySent(ctx context.Context, payload *SummarySent) error
}

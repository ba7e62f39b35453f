// Package domain contains the core types for email analysis.
package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Inbound Email Event
// =============================================================================

// EmailEvent is the raw inbound event payload as delivered on the
// email.fetched stream. All fields are optional at the wire level;
// ParseEmailMessage applies the documented defaults exactly once.
type EmailEvent struct {
	MessageID string   `json:"messageId"`
	ThreadID  string   `json:"threadId"`
	Subject   string   `json:"subject"`
	Snippet   string   `json:"snippet"`
	From      string   `json:"from"`
	LabelIDs  []string `json:"labelIds"`
	Date      string   `json:"date"`
}

// EmailMessage is the validated, immutable input for one analysis invocation.
type EmailMessage struct {
	MessageID string
	ThreadID  string
	Subject   string
	Snippet   string
	From      string
	LabelIDs  []string
	// Date is the raw provider timestamp. It is kept as a string because a
	// malformed date is not an error: the urgency scorer parses it and
	// degrades to a zero recency bonus.
	Date string
}

// ParseEmailMessage validates an inbound event into an EmailMessage.
// Defaults: messageId/threadId -> "unknown", labelIds -> empty,
// date -> current time (RFC 3339).
func ParseEmailMessage(ev *EmailEvent) *EmailMessage {
	msg := &EmailMessage{
		MessageID: ev.MessageID,
		ThreadID:  ev.ThreadID,
		Subject:   ev.Subject,
		Snippet:   ev.Snippet,
		From:      ev.From,
		LabelIDs:  ev.LabelIDs,
		Date:      ev.Date,
	}
	if msg.MessageID == "" {
		msg.MessageID = "unknown"
	}
	if msg.ThreadID == "" {
		msg.ThreadID = "unknown"
	}
	if msg.LabelIDs == nil {
		msg.LabelIDs = []string{}
	}
	if msg.Date == "" {
		msg.Date = time.Now().Format(time.RFC3339)
	}
	return msg
}

// FullText returns the combined subject and body text used for
// category and urgency analysis.
func (m *EmailMessage) FullText() string {
	return m.Subject + "\n\n" + m.Snippet
}

// SenderLocalPart returns the part of the sender address before '@',
// lowercased, or "" when the address has no '@'.
func (m *EmailMessage) SenderLocalPart() string {
	at := strings.Index(m.From, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(m.From[:at])
}

// =============================================================================
// Analysis Results
// =============================================================================

// Level is a three-step label shared by the urgency and importance scorers.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// LevelFromScore maps a clamped score to its label.
// Thresholds are exclusive: 0.7 itself is medium, 0.4 itself is low.
func LevelFromScore(score float64) Level {
	switch {
	case score > 0.7:
		return LevelHigh
	case score > 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ClampScore clamps a score into [0, 1].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// CategoryResult is the outcome of the category classifier.
// Alternative and PromotionScore are nil below their materiality
// thresholds (0.3), matching the wire sentinel of the original events.
type CategoryResult struct {
	Category       string   `json:"category"`
	Confidence     float64  `json:"confidence"`
	Alternative    *string  `json:"alternative,omitempty"`
	PromotionScore *float64 `json:"promotion_score,omitempty"`
}

// IsPromotional reports whether the category is any promotion.* label.
func (r *CategoryResult) IsPromotional() bool {
	return strings.HasPrefix(r.Category, "promotion.")
}

// UrgencyResult is the outcome of the urgency scorer. Factors map each
// contributing signal to its signed contribution; they are diagnostic
// only and never consulted downstream.
type UrgencyResult struct {
	Urgency Level              `json:"urgency"`
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors,omitempty"`
}

// ImportanceResult is the outcome of the importance scorer.
type ImportanceResult struct {
	Importance Level              `json:"importance"`
	Score      float64            `json:"score"`
	Factors    map[string]float64 `json:"factors,omitempty"`
}

// AnalysisResult is the full outcome for one email. Error is set only by
// the top-level fallback path; a result always exists even then.
type AnalysisResult struct {
	MessageID     string            `json:"messageId"`
	ThreadID      string            `json:"threadId"`
	Subject       string            `json:"subject"`
	From          string            `json:"from"`
	LabelIDs      []string          `json:"labelIds"`
	Category      *CategoryResult   `json:"category"`
	Urgency       *UrgencyResult    `json:"urgency"`
	Importance    *ImportanceResult `json:"importance"`
	ShouldArchive bool              `json:"shouldArchive"`
	Error         string            `json:"error,omitempty"`
}

// =============================================================================
// Processed Email History
// =============================================================================

// State namespace/key under which the processed-email history lives.
const (
	StateNamespace  = "email_analysis"
	StateKeyHistory = "processed_emails"
)

// ProcessedEmailRecord is the reduced projection of an AnalysisResult
// appended to the history sequence. Records are create-only.
type ProcessedEmailRecord struct {
	MessageID      string `json:"messageId"`
	ThreadID       string `json:"threadId"`
	Category       string `json:"category"`
	Urgency        Level  `json:"urgency"`
	Importance     Level  `json:"importance"`
	ShouldArchive  bool   `json:"shouldArchive"`
	ProcessingTime string `json:"processingTime"`
}

// =============================================================================
// Summary
// =============================================================================

// EmailSummary aggregates the processed-email history for the digest.
type EmailSummary struct {
	Date           string         `json:"date"`
	TotalEmails    int            `json:"totalEmails"`
	CategoryCounts map[string]int `json:"categoryCounts"`
	UrgencyCounts  map[Level]int  `json:"urgencyCounts"`
	ArchivedCount  int            `json:"archivedCount"`
}

// Package worker consumes inbound events and runs them through the
// analysis pipeline on a bounded worker pool.
package worker

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

const (
	// JobEmailAnalyze runs the full analysis pipeline for one email.
	JobEmailAnalyze JobType = "email.analyze"

	// JobSummaryGenerate builds and delivers the daily digest.
	JobSummaryGenerate JobType = "summary.generate"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
		Retries:   0,
	}
}

// EmailAnalyzePayload carries one fetched email. Field names follow the
// inbound event contract; missing fields get defaults during parsing.
type EmailAnalyzePayload struct {
	MessageID string   `json:"messageId"`
	ThreadID  string   `json:"threadId"`
	Subject   string   `json:"subject"`
	Snippet   string   `json:"snippet"`
	From      string   `json:"from"`
	LabelIDs  []string `json:"labelIds"`
	Date      string   `json:"date"`
}

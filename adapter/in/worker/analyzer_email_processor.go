package worker

import (
	"context"

	"analyzer_server/core/domain"
	"analyzer_server/core/service/analysis"
	"analyzer_server/core/service/report"
)

// EmailProcessor runs the analysis pipeline for email.analyze jobs.
type EmailProcessor struct {
	analyzer *analysis.Service
}

func NewEmailProcessor(analyzer *analysis.Service) *EmailProcessor {
	return &EmailProcessor{analyzer: analyzer}
}

// ProcessAnalyze always succeeds from the pool's point of view: the
// pipeline converts its own failures into error events and a safe
// default result, so there is nothing to retry. Only a malformed
// payload is a job error.
func (p *EmailProcessor) ProcessAnalyze(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[EmailAnalyzePayload](msg)
	if err != nil {
		return err
	}

	p.analyzer.Analyze(ctx, &domain.EmailEvent{
		MessageID: payload.MessageID,
		ThreadID:  payload.ThreadID,
		Subject:   payload.Subject,
		Snippet:   payload.Snippet,
		From:      payload.From,
		LabelIDs:  payload.LabelIDs,
		Date:      payload.Date,
	})
	return nil
}

// ReportProcessor runs the digest cycle for summary.generate jobs.
type ReportProcessor struct {
	reporter *report.Service
}

func NewReportProcessor(reporter *report.Service) *ReportProcessor {
	return &ReportProcessor{reporter: reporter}
}

func (p *ReportProcessor) ProcessSummary(ctx context.Context, msg *Message) error {
	return p.reporter.SendDailySummary(ctx)
}

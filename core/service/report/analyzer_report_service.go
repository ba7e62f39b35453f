// Package report builds the daily digest from the processed-email
// history and delivers it.
package report

import (
	"context"
	"time"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/logger"
)

// Service aggregates the history into an EmailSummary, notifies the
// configured channel, resets the history and emits the summary event.
type Service struct {
	state    out.StateStore
	events   out.EventPublisher
	notifier out.SummaryNotifier // nil when no channel is configured

	now func() time.Time
}

func NewService(state out.StateStore, events out.EventPublisher, notifier out.SummaryNotifier) *Service {
	return &Service{
		state:    state,
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}
}

// BuildSummary aggregates the current history without consuming it.
func (s *Service) BuildSummary(ctx context.Context) (*domain.EmailSummary, error) {
	var history []domain.ProcessedEmailRecord
	if _, err := s.state.Get(ctx, domain.StateNamespace, domain.StateKeyHistory, &history); err != nil {
		return nil, err
	}

	summary := &domain.EmailSummary{
		Date:           s.now().Format("2006-01-02"),
		TotalEmails:    len(history),
		CategoryCounts: map[string]int{},
		UrgencyCounts:  map[domain.Level]int{},
	}
	for _, rec := range history {
		summary.CategoryCounts[rec.Category]++
		summary.UrgencyCounts[rec.Urgency]++
		if rec.ShouldArchive {
			summary.ArchivedCount++
		}
	}
	return summary, nil
}

// SendDailySummary runs one digest cycle. An empty history is a no-op:
// nothing is sent, the history is left alone and no event is emitted.
// Notification failure is logged but does not abort the cycle; the
// history is still reset so the next digest starts fresh.
func (s *Service) SendDailySummary(ctx context.Context) error {
	summary, err := s.BuildSummary(ctx)
	if err != nil {
		return err
	}
	if summary.TotalEmails == 0 {
		logger.Info("no processed emails, skipping daily summary")
		return nil
	}

	sent := false
	if s.notifier != nil {
		if err := s.notifier.SendSummary(ctx, summary); err != nil {
			logger.WithError(err).Error("summary notification failed")
		} else {
			sent = true
		}
	}

	if err := s.state.Delete(ctx, domain.StateNamespace, domain.StateKeyHistory); err != nil {
		return err
	}

	if err := s.events.PublishSummarySent(ctx, &out.SummarySent{
		Date:          summary.Date,
		Summary:       summary,
		SentToDiscord: sent,
	}); err != nil {
		return err
	}

	logger.WithFields(map[string]any{
		"date":         summary.Date,
		"total_emails": summary.TotalEmails,
		"archived":     summary.ArchivedCount,
		"notified":     sent,
	}).Info("daily summary sent")
	return nil
}

package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/logger"
)

// =============================================================================
// Analysis Service (orchestrator)
// =============================================================================

// archiveScoreThreshold archives on raw promotional vocabulary even when
// the classifier picked a non-promotional category.
const archiveScoreThreshold = 0.7

// Service runs the three scorers for one email, decides archival,
// records the history entry and emits the result event.
//
// Invocations for different emails may run concurrently; they share no
// mutable state except the external history sequence.
type Service struct {
	category   *CategoryClassifier
	urgency    *UrgencyScorer
	importance *ImportanceScorer
	state      out.StateStore
	events     out.EventPublisher

	// inferenceTimeout bounds each external model call. The scorers
	// treat expiry like any other call failure.
	inferenceTimeout time.Duration

	now func() time.Time
}

func NewService(
	category *CategoryClassifier,
	urgency *UrgencyScorer,
	importance *ImportanceScorer,
	state out.StateStore,
	events out.EventPublisher,
	inferenceTimeout time.Duration,
) *Service {
	return &Service{
		category:         category,
		urgency:          urgency,
		importance:       importance,
		state:            state,
		events:           events,
		inferenceTimeout: inferenceTimeout,
		now:              time.Now,
	}
}

// Analyze processes one inbound email event. It always returns a
// result: on any pipeline failure it emits an email.analysis.error
// event and returns the safe default instead of propagating.
func (s *Service) Analyze(ctx context.Context, ev *domain.EmailEvent) *domain.AnalysisResult {
	msg := domain.ParseEmailMessage(ev)

	result, err := s.analyze(ctx, msg)
	if err != nil {
		return s.failAnalysis(ctx, msg, err)
	}
	return result
}

func (s *Service) analyze(ctx context.Context, msg *domain.EmailMessage) (result *domain.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("analysis panic: %v", r)
		}
	}()

	if promotionalSender(msg) {
		logger.WithMessageID(msg.MessageID).Debug("sender %q matches promotional pattern", msg.From)
	}

	// The scorers are independent; the two that call external models
	// run concurrently, each under its own timeout. They degrade
	// internally and never return an error. Each goroutine carries its
	// own recover, since the deferred one above only covers this
	// goroutine's stack.
	var (
		wg       sync.WaitGroup
		catRes   *domain.CategoryResult
		urgRes   *domain.UrgencyResult
		panicMu  sync.Mutex
		panicErr error
	)
	recordPanic := func() {
		if r := recover(); r != nil {
			panicMu.Lock()
			panicErr = fmt.Errorf("analysis panic: %v", r)
			panicMu.Unlock()
		}
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer recordPanic()
		cctx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
		defer cancel()
		catRes = s.category.Classify(cctx, msg)
	}()
	go func() {
		defer wg.Done()
		defer recordPanic()
		uctx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
		defer cancel()
		urgRes = s.urgency.Score(uctx, msg)
	}()
	impRes := s.importance.Score(msg)
	wg.Wait()

	if panicErr != nil {
		return nil, panicErr
	}

	result = &domain.AnalysisResult{
		MessageID:     msg.MessageID,
		ThreadID:      msg.ThreadID,
		Subject:       msg.Subject,
		From:          msg.From,
		LabelIDs:      msg.LabelIDs,
		Category:      catRes,
		Urgency:       urgRes,
		Importance:    impRes,
		ShouldArchive: shouldArchive(catRes, urgRes, impRes),
	}

	if err := s.appendHistory(ctx, result); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	if err := s.events.PublishAnalyzed(ctx, result); err != nil {
		return nil, fmt.Errorf("publish result: %w", err)
	}

	logger.WithFields(map[string]any{
		"message_id":     result.MessageID,
		"category":       catRes.Category,
		"urgency":        string(urgRes.Urgency),
		"importance":     string(impRes.Importance),
		"should_archive": result.ShouldArchive,
	}).Info("email analyzed")
	return result, nil
}

// shouldArchive is true only for promotional mail that is both low
// urgency and low importance.
func shouldArchive(cat *domain.CategoryResult, urg *domain.UrgencyResult, imp *domain.ImportanceResult) bool {
	promotional := cat.IsPromotional() ||
		(cat.PromotionScore != nil && *cat.PromotionScore > archiveScoreThreshold)
	return promotional &&
		urg.Urgency == domain.LevelLow &&
		imp.Importance == domain.LevelLow
}

// appendHistory appends a reduced record to the processed-email
// sequence. This is a read-modify-write, not an atomic append:
// concurrent invocations can race and the last writer wins. Accepted
// limitation; the history feeds a daily digest, not an audit log.
func (s *Service) appendHistory(ctx context.Context, result *domain.AnalysisResult) error {
	var history []domain.ProcessedEmailRecord
	if _, err := s.state.Get(ctx, domain.StateNamespace, domain.StateKeyHistory, &history); err != nil {
		return err
	}
	history = append(history, domain.ProcessedEmailRecord{
		MessageID:      result.MessageID,
		ThreadID:       result.ThreadID,
		Category:       result.Category.Category,
		Urgency:        result.Urgency.Urgency,
		Importance:     result.Importance.Importance,
		ShouldArchive:  result.ShouldArchive,
		ProcessingTime: s.now().Format(time.RFC3339),
	})
	return s.state.Set(ctx, domain.StateNamespace, domain.StateKeyHistory, history)
}

// History returns the current processed-email sequence, oldest first.
func (s *Service) History(ctx context.Context) ([]domain.ProcessedEmailRecord, error) {
	var history []domain.ProcessedEmailRecord
	found, err := s.state.Get(ctx, domain.StateNamespace, domain.StateKeyHistory, &history)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.ProcessedEmailRecord{}, nil
	}
	return history, nil
}

// failAnalysis is the top-level fallback: log, emit the error event,
// return the safe default result. The error event publish itself is
// best effort.
func (s *Service) failAnalysis(ctx context.Context, msg *domain.EmailMessage, cause error) *domain.AnalysisResult {
	logger.WithMessageID(msg.MessageID).WithError(cause).Error("email analysis failed, emitting error event")

	if err := s.events.PublishAnalysisError(ctx, &out.AnalysisError{
		MessageID: msg.MessageID,
		ThreadID:  msg.ThreadID,
		Error:     cause.Error(),
	}); err != nil {
		logger.WithMessageID(msg.MessageID).WithError(err).Error("error event publish failed")
	}

	return &domain.AnalysisResult{
		MessageID:     msg.MessageID,
		ThreadID:      msg.ThreadID,
		Subject:       msg.Subject,
		From:          msg.From,
		LabelIDs:      msg.LabelIDs,
		Category:      &domain.CategoryResult{Category: domain.CategoryUnknown, Confidence: 0},
		Urgency:       &domain.UrgencyResult{Urgency: domain.LevelMedium, Score: 0.5},
		Importance:    &domain.ImportanceResult{Importance: domain.LevelMedium, Score: 0.5},
		ShouldArchive: false,
		Error:         cause.Error(),
	}
}

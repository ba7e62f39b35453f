// Package messaging implements the outbound event publisher on Redis
// Streams.
package messaging

import (
	"context"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
	"analyzer_server/internal/stream"
	"analyzer_server/pkg/apperr"
)

// EventProducer publishes analyzer events, one stream per topic. The
// payload is the event body itself; consumers correlate via messageId.
type EventProducer struct {
	stream *stream.RedisStream
}

func NewEventProducer(s *stream.RedisStream) *EventProducer {
	return &EventProducer{stream: s}
}

func (p *EventProducer) PublishAnalyzed(ctx context.Context, result *domain.AnalysisResult) error {
	if _, err := p.stream.Publish(ctx, stream.StreamEmailAnalyzed, result); err != nil {
		return apperr.ExternalError("event stream", err)
	}
	return nil
}

func (p *EventProducer) PublishAnalysisError(ctx context.Context, payload *out.AnalysisError) error {
	if _, err := p.stream.Publish(ctx, stream.StreamAnalysisError, payload); err != nil {
		return apperr.ExternalError("event stream", err)
	}
	return nil
}

func (p *EventProducer) PublishSummarySent(ctx context.Context, payload *out.SummarySent) error {
	if _, err := p.stream.Publish(ctx, stream.StreamSummarySent, payload); err != nil {
		return apperr.ExternalError("event stream", err)
	}
	return nil
}

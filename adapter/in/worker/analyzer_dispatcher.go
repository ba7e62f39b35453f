package worker

import (
	"context"

	"github.com/goccy/go-json"

	"analyzer_server/pkg/logger"
)

type Handler struct {
	emailProcessor  *EmailProcessor
	reportProcessor *ReportProcessor
}

func NewHandler(emailProcessor *EmailProcessor, reportProcessor *ReportProcessor) *Handler {
	return &Handler{
		emailProcessor:  emailProcessor,
		reportProcessor: reportProcessor,
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("processing message: %s", msg.Type)

	switch msg.Type {
	case JobEmailAnalyze:
		return h.emailProcessor.ProcessAnalyze(ctx, msg)
	case JobSummaryGenerate:
		return h.reportProcessor.ProcessSummary(ctx, msg)
	default:
		logger.Warn("unknown job type: %s", msg.Type)
		return nil
	}
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

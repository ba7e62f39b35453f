package out

import (
	"context"

	"analyzer_server/core/domain"
)

// SummaryNotifier delivers the daily digest to an external channel.
type SummaryNotifier interface {
	SendSummary(ctx context.Context, summary *domain.EmailSummary) error
}

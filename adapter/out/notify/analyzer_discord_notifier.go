// Package notify delivers the daily digest to Discord via webhook.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"analyzer_server/core/domain"
	"analyzer_server/pkg/apperr"
	"analyzer_server/pkg/httputil"
)

const embedColor = 0x5865F2

// DiscordNotifier posts an embed to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     httputil.WebhookClient(),
	}
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []embedField `json:"fields"`
	Footer *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// SendSummary posts the digest embed. Discord answers 204 on success.
func (n *DiscordNotifier) SendSummary(ctx context.Context, summary *domain.EmailSummary) error {
	payload := webhookPayload{
		Embeds: []embed{{
			Title: "Daily Email Summary",
			Color: embedColor,
			Fields: []embedField{
				{Name: "Total Emails", Value: fmt.Sprintf("%d", summary.TotalEmails), Inline: true},
				{Name: "Archived", Value: fmt.Sprintf("%d", summary.ArchivedCount), Inline: true},
				{Name: "Categories", Value: categoryBreakdown(summary.CategoryCounts)},
				{Name: "Urgency", Value: urgencyBreakdown(summary.UrgencyCounts)},
			},
			Footer: &embedFooter{Text: summary.Date},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.ExternalError("discord", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return apperr.ExternalError("discord", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return apperr.ExternalError("discord", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperr.ExternalError("discord", fmt.Errorf("webhook status %d", resp.StatusCode))
	}
	return nil
}

func categoryBreakdown(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	cats := make([]string, 0, len(counts))
	for cat := range counts {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var b strings.Builder
	for _, cat := range cats {
		fmt.Fprintf(&b, "%s: %d\n", cat, counts[cat])
	}
	return strings.TrimRight(b.String(), "\n")
}

func urgencyBreakdown(counts map[domain.Level]int) string {
	return fmt.Sprintf("high: %d | medium: %d | low: %d",
		counts[domain.LevelHigh], counts[domain.LevelMedium], counts[domain.LevelLow])
}

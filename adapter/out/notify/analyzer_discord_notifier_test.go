package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"analyzer_server/core/domain"
)

func sampleSummary() *domain.EmailSummary {
	return &domain.EmailSummary{
		Date:        "2026-08-27",
		TotalEmails: 5,
		CategoryCounts: map[string]int{
			"work.task":          3,
			"promotion.discount": 2,
		},
		UrgencyCounts: map[domain.Level]int{
			domain.LevelHigh: 1,
			domain.LevelLow:  4,
		},
		ArchivedCount: 2,
	}
}

func TestSendSummary_PostsEmbed(t *testing.T) {
	var got webhookPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	notifier := NewDiscordNotifier(ts.URL)
	if err := notifier.SendSummary(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("SendSummary: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "Daily Email Summary" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Footer == nil || e.Footer.Text != "2026-08-27" {
		t.Errorf("footer = %+v", e.Footer)
	}

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Total Emails"] != "5" || fields["Archived"] != "2" {
		t.Errorf("count fields = %v", fields)
	}
	if !strings.Contains(fields["Categories"], "work.task: 3") {
		t.Errorf("Categories = %q", fields["Categories"])
	}
	if fields["Urgency"] != "high: 1 | medium: 0 | low: 4" {
		t.Errorf("Urgency = %q", fields["Urgency"])
	}
}

func TestSendSummary_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid webhook", http.StatusNotFound)
	}))
	defer ts.Close()

	notifier := NewDiscordNotifier(ts.URL)
	if err := notifier.SendSummary(context.Background(), sampleSummary()); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestCategoryBreakdown(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   string
	}{
		{"empty", map[string]int{}, "none"},
		{"sorted by label", map[string]int{"work.task": 1, "personal.finance": 2}, "personal.finance: 2\nwork.task: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categoryBreakdown(tt.counts); got != tt.want {
				t.Errorf("categoryBreakdown = %q, want %q", got, tt.want)
			}
		})
	}
}

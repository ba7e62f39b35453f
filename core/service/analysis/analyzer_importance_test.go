package analysis

import (
	"strings"
	"testing"

	"analyzer_server/core/domain"
)

func TestImportance_VIPSenderBonus(t *testing.T) {
	scorer := NewImportanceScorer()

	msg := &domain.EmailMessage{
		From:    "boss@company.com",
		Subject: "Team sync",
		Snippet: strings.Repeat("We should talk about the roadmap. ", 5),
	}
	got := scorer.Score(msg)

	if _, ok := got.Factors["vip_sender"]; !ok {
		t.Error("expected vip_sender factor for boss@ sender")
	}
	// Baseline 0.5 + vip 0.2 + optimal length 0.1.
	if !almostEqual(got.Score, 0.8) {
		t.Errorf("Score = %.4f, want 0.8", got.Score)
	}
	if got.Importance != domain.LevelHigh {
		t.Errorf("Importance = %s, want high", got.Importance)
	}
}

func TestImportance_VIPFragmentDoesNotStack(t *testing.T) {
	scorer := NewImportanceScorer()

	// Sender matches both "ceo" and "boss"; only one bonus applies.
	msg := &domain.EmailMessage{
		From:    "ceo-boss@company.com",
		Subject: "x",
		Snippet: strings.Repeat("a", 200),
	}
	got := scorer.Score(msg)

	if !almostEqual(got.Factors["vip_sender"], 0.2) {
		t.Errorf("vip_sender = %.4f, want single 0.2 bonus", got.Factors["vip_sender"])
	}
}

func TestImportance_DirectAddressCues(t *testing.T) {
	scorer := NewImportanceScorer()

	tests := []struct {
		name    string
		snippet string
		want    bool
	}{
		{"dear near the top", "Dear team, here is the agenda for tomorrow", true},
		{"hi in the first fifty chars", "Hi Alice, quick question about the invoice", true},
		{"dear too deep", strings.Repeat("x", 120) + " dear reader", false},
		{"no cue", "The quarterly numbers are attached for review here", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &domain.EmailMessage{From: "a@b.c", Subject: "s", Snippet: tt.snippet}
			got := scorer.Score(msg)
			_, present := got.Factors["direct_address"]
			if present != tt.want {
				t.Errorf("direct_address present = %v, want %v", present, tt.want)
			}
		})
	}
}

func TestImportance_ContentLength(t *testing.T) {
	scorer := NewImportanceScorer()

	tests := []struct {
		name   string
		length int
		factor string
	}{
		{"very short penalized", 30, "short_content"},
		{"between fifty and hundred is neutral", 70, ""},
		{"optimal range rewarded", 500, "optimal_length"},
		{"overlong is neutral", 2000, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &domain.EmailMessage{From: "a@b.c", Subject: "s", Snippet: strings.Repeat("a", tt.length)}
			got := scorer.Score(msg)

			for _, f := range []string{"short_content", "optimal_length"} {
				_, present := got.Factors[f]
				if f == tt.factor && !present {
					t.Errorf("expected factor %s for length %d", f, tt.length)
				}
				if f != tt.factor && present {
					t.Errorf("unexpected factor %s for length %d", f, tt.length)
				}
			}
		})
	}
}

func TestImportance_ThreadReplyBonus(t *testing.T) {
	scorer := NewImportanceScorer()

	msg := &domain.EmailMessage{From: "a@b.c", Subject: "Re: budget approval", Snippet: strings.Repeat("a", 70)}
	got := scorer.Score(msg)

	if !almostEqual(got.Factors["thread_reply"], 0.1) {
		t.Errorf("thread_reply = %.4f, want 0.1", got.Factors["thread_reply"])
	}
}

func TestImportance_QuestionBonusCapped(t *testing.T) {
	scorer := NewImportanceScorer()

	msg := &domain.EmailMessage{
		From:    "a@b.c",
		Subject: "s",
		Snippet: strings.Repeat("a", 60) + strings.Repeat("?", 10),
	}
	got := scorer.Score(msg)

	if !almostEqual(got.Factors["questions"], 0.2) {
		t.Errorf("questions = %.4f, want capped at 0.2", got.Factors["questions"])
	}
}

func TestImportance_ScoreClamped(t *testing.T) {
	scorer := NewImportanceScorer()

	// Everything at once: 0.5 + 0.2 + 0.1 + 0.1 + 0.1 + 0.2 = 1.2, clamps to 1.
	msg := &domain.EmailMessage{
		From:    "director@firm.com",
		Subject: "Re: urgent decision",
		Snippet: "Dear board, " + strings.Repeat("can we proceed? ", 20),
	}
	got := scorer.Score(msg)

	if got.Score != 1.0 {
		t.Errorf("Score = %.4f, want clamped to 1.0", got.Score)
	}
	if got.Importance != domain.LevelHigh {
		t.Errorf("Importance = %s, want high", got.Importance)
	}
}

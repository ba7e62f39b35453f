package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
)

type stubZeroShot struct {
	result *out.ZeroShotResult
	err    error
}

func (s *stubZeroShot) ClassifyText(ctx context.Context, text string, labels []string) (*out.ZeroShotResult, error) {
	return s.result, s.err
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPromotionScore_Clamped(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no keywords", "quarterly planning meeting", 0},
		{"single keyword", "our newsletter this month", 0.6 / 3.0},
		{"many keywords clamp to one", "discount sale offer promo coupon exclusive deal", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := promotionScore(tt.text)
			if !almostEqual(got, tt.want) {
				t.Errorf("promotionScore(%q) = %.4f, want %.4f", tt.text, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("promotionScore out of range: %.4f", got)
			}
		})
	}
}

func TestClassify_PromotionalOverride(t *testing.T) {
	// Heavy promotional vocabulary but the model picks a work label.
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"work.update", "promotion.discount"},
			Scores: []float64{0.55, 0.2},
		},
	})

	msg := &domain.EmailMessage{
		Subject: "Huge discount sale",
		Snippet: "Exclusive offer with promo coupon, limited time deal",
	}
	got := classifier.Classify(context.Background(), msg)

	if got.Category != "promotion.marketing" {
		t.Fatalf("Category = %q, want promotion.marketing", got.Category)
	}
	// Confidence takes the higher of model confidence and promo score.
	if got.Confidence < 0.55 {
		t.Errorf("Confidence = %.4f, should not drop below model confidence", got.Confidence)
	}
	if got.PromotionScore == nil || *got.PromotionScore <= 0.7 {
		t.Errorf("PromotionScore = %v, want > 0.7", got.PromotionScore)
	}
}

func TestClassify_NoOverrideForPromotionalTopLabel(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"promotion.discount", "promotion.newsletter"},
			Scores: []float64{0.8, 0.1},
		},
	})

	msg := &domain.EmailMessage{
		Subject: "Huge discount sale",
		Snippet: "Exclusive offer with promo coupon, limited time deal",
	}
	got := classifier.Classify(context.Background(), msg)

	if got.Category != "promotion.discount" {
		t.Errorf("Category = %q, the model's promotion label must stand", got.Category)
	}
	if !almostEqual(got.Confidence, 0.8) {
		t.Errorf("Confidence = %.4f, want 0.8 untouched", got.Confidence)
	}
}

func TestClassify_HybridizationSameMainCategory(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"work.task", "work.meeting"},
			Scores: []float64{0.5, 0.44},
		},
	})

	msg := &domain.EmailMessage{Subject: "Project planning", Snippet: "Please review the plan"}
	got := classifier.Classify(context.Background(), msg)

	want := 0.5 + 0.44*0.5
	if !almostEqual(got.Confidence, want) {
		t.Errorf("Confidence = %.4f, want %.4f (boosted by runner-up)", got.Confidence, want)
	}
	if got.Alternative == nil || *got.Alternative != "work.meeting" {
		t.Errorf("Alternative = %v, want work.meeting", got.Alternative)
	}
}

func TestClassify_NoHybridizationAcrossMainCategories(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"work.task", "personal.finance"},
			Scores: []float64{0.5, 0.44},
		},
	})

	msg := &domain.EmailMessage{Subject: "Project planning", Snippet: "Please review the plan"}
	got := classifier.Classify(context.Background(), msg)

	if !almostEqual(got.Confidence, 0.5) {
		t.Errorf("Confidence = %.4f, want 0.5 unchanged for cross-category runner-up", got.Confidence)
	}
	if got.Alternative == nil || *got.Alternative != "personal.finance" {
		t.Errorf("Alternative = %v, still reported when material", got.Alternative)
	}
}

func TestClassify_NoHybridizationAboveConfidenceCeiling(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"work.task", "work.meeting"},
			Scores: []float64{0.65, 0.35},
		},
	})

	msg := &domain.EmailMessage{Subject: "Project planning", Snippet: "Please review the plan"}
	got := classifier.Classify(context.Background(), msg)

	if !almostEqual(got.Confidence, 0.65) {
		t.Errorf("Confidence = %.4f, want 0.65 unchanged above ceiling", got.Confidence)
	}
}

func TestClassify_AlternativeBelowMaterialityOmitted(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"work.task", "work.meeting"},
			Scores: []float64{0.9, 0.05},
		},
	})

	msg := &domain.EmailMessage{Subject: "Project planning", Snippet: "Please review the plan"}
	got := classifier.Classify(context.Background(), msg)

	if got.Alternative != nil {
		t.Errorf("Alternative = %q, want omitted below 0.3", *got.Alternative)
	}
	if got.PromotionScore != nil {
		t.Errorf("PromotionScore = %v, want omitted below 0.3", *got.PromotionScore)
	}
}

func TestClassify_DegradesToUnknownOnModelError(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{err: errors.New("model unavailable")})

	msg := &domain.EmailMessage{Subject: "Anything", Snippet: "at all"}
	got := classifier.Classify(context.Background(), msg)

	if got.Category != domain.CategoryUnknown {
		t.Errorf("Category = %q, want unknown", got.Category)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %.4f, want 0", got.Confidence)
	}
	if got.Alternative != nil || got.PromotionScore != nil {
		t.Error("degraded result must not carry optional fields")
	}
}

func TestClassify_InvalidModelLabelBecomesUnknown(t *testing.T) {
	classifier := NewCategoryClassifier(&stubZeroShot{
		result: &out.ZeroShotResult{
			Labels: []string{"totally.made.up"},
			Scores: []float64{0.9},
		},
	})

	msg := &domain.EmailMessage{Subject: "Anything", Snippet: "at all"}
	got := classifier.Classify(context.Background(), msg)

	if got.Category != domain.CategoryUnknown {
		t.Errorf("Category = %q, want unknown for out-of-set label", got.Category)
	}
}

func TestPromotionalSender(t *testing.T) {
	tests := []struct {
		from string
		want bool
	}{
		{"newsletter@shop.com", true},
		{"noreply@service.io", true},
		{"alice@example.com", false},
		{"no-at-sign", false},
	}
	for _, tt := range tests {
		msg := &domain.EmailMessage{From: tt.from}
		if got := promotionalSender(msg); got != tt.want {
			t.Errorf("promotionalSender(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestClassify_CandidateSetRoundTrips(t *testing.T) {
	// Every candidate label the classifier hands to the model must
	// survive validation unchanged.
	for _, cat := range domain.EmailCategories {
		if domain.ValidateCategory(cat) != cat {
			t.Errorf("candidate label %q does not validate", cat)
		}
	}
}

// Package inference contains the outbound adapters for the external
// model services used by the scorers.
package inference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"analyzer_server/core/port/out"
	"analyzer_server/pkg/apperr"
	"analyzer_server/pkg/httputil"
	"analyzer_server/pkg/logger"
)

// =============================================================================
// Hosted Inference API Client
// =============================================================================

const defaultInferenceBaseURL = "https://api-inference.huggingface.co/models"

// HFConfig holds the hosted inference configuration.
type HFConfig struct {
	BaseURL        string
	Token          string
	ZeroShotModel  string // e.g. facebook/bart-large-mnli
	SentimentModel string // e.g. distilbert-base-uncased-finetuned-sst-2-english
}

// HFClient calls hosted model endpoints. It implements both
// out.ZeroShotClassifier and out.SentimentClassifier behind one shared
// circuit breaker, since both models live on the same service.
type HFClient struct {
	cfg    HFConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

func NewHFClient(cfg HFConfig) *HFClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultInferenceBaseURL
	}

	cbSettings := gobreaker.Settings{
		Name:        "inference-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: state changed from %s to %s", name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Client-side failures say nothing about endpoint health.
			_, ok := err.(*nonCircuitError)
			return ok
		},
	}

	return &HFClient{
		cfg:    cfg,
		client: httputil.InferenceClient(),
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ClassifyText runs zero-shot classification over the candidate labels.
// The endpoint returns labels already sorted by descending score.
func (c *HFClient) ClassifyText(ctx context.Context, text string, labels []string) (*out.ZeroShotResult, error) {
	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, apperr.InferenceError(c.cfg.ZeroShotModel, err)
	}

	raw, err := c.callModel(ctx, c.cfg.ZeroShotModel, body)
	if err != nil {
		return nil, err
	}

	var resp zeroShotResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperr.InferenceError(c.cfg.ZeroShotModel, fmt.Errorf("malformed response: %w", err))
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, apperr.InferenceError(c.cfg.ZeroShotModel,
			fmt.Errorf("label/score length mismatch: %d vs %d", len(resp.Labels), len(resp.Scores)))
	}
	return &out.ZeroShotResult{Labels: resp.Labels, Scores: resp.Scores}, nil
}

type sentimentRequest struct {
	Inputs string `json:"inputs"`
}

type sentimentEntry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifySentiment returns polarity scores for the text. The endpoint
// wraps the entries in an extra array level, one inner list per input.
func (c *HFClient) ClassifySentiment(ctx context.Context, text string) ([]out.SentimentScore, error) {
	body, err := json.Marshal(sentimentRequest{Inputs: text})
	if err != nil {
		return nil, apperr.InferenceError(c.cfg.SentimentModel, err)
	}

	raw, err := c.callModel(ctx, c.cfg.SentimentModel, body)
	if err != nil {
		return nil, err
	}

	var resp [][]sentimentEntry
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Some models answer with a flat list.
		var flat []sentimentEntry
		if err2 := json.Unmarshal(raw, &flat); err2 != nil {
			return nil, apperr.InferenceError(c.cfg.SentimentModel, fmt.Errorf("malformed response: %w", err))
		}
		resp = [][]sentimentEntry{flat}
	}
	if len(resp) == 0 {
		return nil, apperr.InferenceError(c.cfg.SentimentModel, fmt.Errorf("empty response"))
	}

	scores := make([]out.SentimentScore, 0, len(resp[0]))
	for _, e := range resp[0] {
		scores = append(scores, out.SentimentScore{Label: e.Label, Score: e.Score})
	}
	return scores, nil
}

// nonCircuitError marks failures that must not trip the breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string { return e.err.Error() }

// callModel posts the payload to one model endpoint through the
// circuit breaker. Server-side failures (5xx, 429) count against the
// breaker; client errors pass through without tripping it.
func (c *HFClient) callModel(ctx context.Context, model string, body []byte) ([]byte, error) {
	url := c.cfg.BaseURL + "/" + model

	result, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, &nonCircuitError{err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return raw, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			// 503 also covers a model still loading on the service side.
			return nil, fmt.Errorf("inference endpoint %s: status %d", model, resp.StatusCode)
		default:
			return nil, &nonCircuitError{err: fmt.Errorf("inference endpoint %s: status %d: %s", model, resp.StatusCode, raw)}
		}
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nil, apperr.InferenceError(model, nce.err)
	}
	if err != nil {
		return nil, apperr.InferenceError(model, err)
	}
	return result.([]byte), nil
}

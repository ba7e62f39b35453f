package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"analyzer_server/core/port/out"
	"analyzer_server/pkg/apperr"
)

// =============================================================================
// LLM-Backed Classifier (alternate inference backend)
// =============================================================================

// OpenAIClient implements both classifier ports on top of a chat model
// in JSON mode. It is selected by configuration when no hosted
// zero-shot endpoint is available.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT3Dot5Turbo1106
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const zeroShotSystemPrompt = `You are a text classifier. Given a text and a list of candidate labels,
assign each label a score between 0 and 1 for how well it describes the text.
Respond with a JSON object: {"scores": {"<label>": <score>, ...}} covering every candidate label.`

// ClassifyText asks the chat model to score every candidate label and
// returns them sorted by descending score, matching the zero-shot
// endpoint contract.
func (c *OpenAIClient) ClassifyText(ctx context.Context, text string, labels []string) (*out.ZeroShotResult, error) {
	user := fmt.Sprintf("Candidate labels: %s\n\nText:\n%s", strings.Join(labels, ", "), text)

	content, err := c.completeJSON(ctx, zeroShotSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperr.InferenceError(c.model, fmt.Errorf("malformed response: %w", err))
	}

	result := &out.ZeroShotResult{
		Labels: make([]string, 0, len(labels)),
		Scores: make([]float64, 0, len(labels)),
	}
	for _, label := range labels {
		result.Labels = append(result.Labels, label)
		result.Scores = append(result.Scores, parsed.Scores[label])
	}
	sort.Sort(byScoreDesc{result})
	return result, nil
}

const sentimentSystemPrompt = `You are a sentiment classifier. Score the text for POSITIVE and NEGATIVE
polarity, each between 0 and 1, summing to 1.
Respond with a JSON object: {"POSITIVE": <score>, "NEGATIVE": <score>}.`

// ClassifySentiment returns POSITIVE/NEGATIVE polarity scores.
func (c *OpenAIClient) ClassifySentiment(ctx context.Context, text string) ([]out.SentimentScore, error) {
	content, err := c.completeJSON(ctx, sentimentSystemPrompt, text)
	if err != nil {
		return nil, err
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperr.InferenceError(c.model, fmt.Errorf("malformed response: %w", err))
	}

	scores := make([]out.SentimentScore, 0, len(parsed))
	for label, score := range parsed {
		scores = append(scores, out.SentimentScore{Label: label, Score: score})
	}
	return scores, nil
}

func (c *OpenAIClient) completeJSON(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return "", apperr.InferenceError(c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.InferenceError(c.model, fmt.Errorf("empty completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

// byScoreDesc sorts parallel label/score slices together.
type byScoreDesc struct{ r *out.ZeroShotResult }

func (s byScoreDesc) Len() int           { return len(s.r.Labels) }
func (s byScoreDesc) Less(i, j int) bool { return s.r.Scores[i] > s.r.Scores[j] }
func (s byScoreDesc) Swap(i, j int) {
	s.r.Labels[i], s.r.Labels[j] = s.r.Labels[j], s.r.Labels[i]
	s.r.Scores[i], s.r.Scores[j] = s.r.Scores[j], s.r.Scores[i]
}

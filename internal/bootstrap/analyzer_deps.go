// Package bootstrap wires the analyzer's dependencies for the api and
// worker modes.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"analyzer_server/adapter/out/inference"
	"analyzer_server/adapter/out/messaging"
	"analyzer_server/adapter/out/notify"
	"analyzer_server/adapter/out/state"
	"analyzer_server/config"
	"analyzer_server/core/port/out"
	"analyzer_server/core/service/analysis"
	"analyzer_server/core/service/report"
	"analyzer_server/internal/stream"
	"analyzer_server/pkg/logger"
)

// Dependencies holds the shared object graph.
type Dependencies struct {
	Redis      *redis.Client
	Stream     *stream.RedisStream
	StateStore out.StateStore
	Events     out.EventPublisher
	Analyzer   *analysis.Service
	Reporter   *report.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	redisStream := stream.NewRedisStream(rdb, cfg.ConsumerGroup)
	stateStore := state.NewRedisStateStore(rdb)
	events := messaging.NewEventProducer(redisStream)

	zeroShot, sentiment := newInferenceBackend(cfg)

	analyzer := analysis.NewService(
		analysis.NewCategoryClassifier(zeroShot),
		analysis.NewUrgencyScorer(sentiment),
		analysis.NewImportanceScorer(),
		stateStore,
		events,
		cfg.InferenceTimeout(),
	)

	var notifier out.SummaryNotifier
	if cfg.DiscordWebhookURL != "" {
		notifier = notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
		logger.Info("Discord notifier configured")
	}
	reporter := report.NewService(stateStore, events, notifier)

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis: %v", err)
		}
	}

	return &Dependencies{
		Redis:      rdb,
		Stream:     redisStream,
		StateStore: stateStore,
		Events:     events,
		Analyzer:   analyzer,
		Reporter:   reporter,
	}, cleanup, nil
}

// newInferenceBackend selects the model backend. The hosted zero-shot
// endpoint is the default; an LLM in JSON mode covers both ports when
// selected explicitly.
func newInferenceBackend(cfg *config.Config) (out.ZeroShotClassifier, out.SentimentClassifier) {
	if cfg.InferenceBackend == "openai" {
		client := inference.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		logger.Info("inference backend: openai (%s)", cfg.OpenAIModel)
		return client, client
	}

	client := inference.NewHFClient(inference.HFConfig{
		BaseURL:        cfg.HFBaseURL,
		Token:          cfg.HFToken,
		ZeroShotModel:  cfg.HFZeroShotModel,
		SentimentModel: cfg.HFSentimentModel,
	})
	logger.Info("inference backend: huggingface (%s, %s)", cfg.HFZeroShotModel, cfg.HFSentimentModel)
	return client, client
}

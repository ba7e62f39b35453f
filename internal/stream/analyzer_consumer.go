package stream

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"analyzer_server/adapter/in/worker"
	"analyzer_server/pkg/logger"
)

// Consumer reads fetched emails off the inbound stream and feeds them
// to the worker pool. Entries the pool rejects stay pending in the
// consumer group and are re-read later.
type Consumer struct {
	stream *RedisStream
	pool   *worker.Pool
	name   string
}

func NewConsumer(stream *RedisStream, pool *worker.Pool, name string) *Consumer {
	return &Consumer{
		stream: stream,
		pool:   pool,
		name:   name,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	if err := c.stream.CreateGroup(ctx, StreamEmailFetched); err != nil {
		logger.Error("failed to create group for %s: %v", StreamEmailFetched, err)
	}

	go c.consume(ctx, StreamEmailFetched)
}

func (c *Consumer) consume(ctx context.Context, stream string) {
	c.stream.Consume(ctx, stream, c.name, func(id string, data []byte) error {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			logger.Warn("failed to unmarshal email event %s: %v", id, err)
			return err
		}

		msg := worker.NewMessage(worker.JobEmailAnalyze, payload)
		if !c.pool.Submit(msg) {
			return fmt.Errorf("pool rejected job for entry %s", id)
		}
		return nil
	})
}

// Package stream wraps Redis Streams for event transport.
package stream

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"analyzer_server/pkg/logger"
)

// Stream names. The inbound stream is fed by the upstream fetcher;
// the rest are produced here.
const (
	StreamEmailFetched  = "email.fetched"
	StreamEmailAnalyzed = "email.analyzed"
	StreamAnalysisError = "email.analysis.error"
	StreamSummarySent   = "email.summary.sent"
)

type RedisStream struct {
	client *redis.Client
	group  string
}

func NewRedisStream(client *redis.Client, group string) *RedisStream {
	return &RedisStream{
		client: client,
		group:  group,
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

// Consume reads the stream as part of the consumer group and hands each
// entry to handler. Handled entries are acknowledged; failed ones stay
// pending for the group.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				logger.Warn("stream read error on %s: %v", stream, err)
			}
			continue
		}

		for _, str := range streams {
			for _, msg := range str.Messages {
				data, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				if err := handler(msg.ID, []byte(data)); err != nil {
					logger.Warn("handler error for %s: %v", msg.ID, err)
					continue
				}

				// Ack on a detached context: a handled entry must not
				// stay pending just because shutdown started while it
				// was being processed.
				ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				if err := s.client.XAck(ackCtx, str.Stream, s.group, msg.ID).Err(); err != nil {
					logger.Warn("ack failed for %s: %v", msg.ID, err)
				}
				cancel()
			}
		}
	}
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

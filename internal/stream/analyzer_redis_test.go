package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

func newTestStream(t *testing.T) (*RedisStream, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStream(client, "test-group"), client
}

func TestPublish_WrapsPayloadAsJSON(t *testing.T) {
	rs, client := newTestStream(t)
	ctx := context.Background()

	payload := map[string]any{"messageId": "m1", "category": "work.task"}
	id, err := rs.Publish(ctx, StreamEmailAnalyzed, payload)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id == "" {
		t.Fatal("Publish returned empty entry id")
	}

	entries, err := client.XRange(ctx, StreamEmailAnalyzed, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stream entries = %d, want 1", len(entries))
	}

	raw, ok := entries[0].Values["data"].(string)
	if !ok {
		t.Fatalf("entry has no data field: %v", entries[0].Values)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("data field is not JSON: %v", err)
	}
	if decoded["messageId"] != "m1" {
		t.Errorf("decoded payload = %v", decoded)
	}
}

func TestCreateGroup_Idempotent(t *testing.T) {
	rs, _ := newTestStream(t)
	ctx := context.Background()

	if err := rs.CreateGroup(ctx, StreamEmailFetched); err != nil {
		t.Fatalf("first CreateGroup: %v", err)
	}
	// Second creation hits BUSYGROUP, which is tolerated.
	if err := rs.CreateGroup(ctx, StreamEmailFetched); err != nil {
		t.Errorf("second CreateGroup: %v", err)
	}
}

func TestConsume_HandlesAndAcks(t *testing.T) {
	rs, _ := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rs.CreateGroup(ctx, StreamEmailFetched); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := rs.Publish(ctx, StreamEmailFetched, map[string]any{"messageId": "m1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	received := make(chan []byte, 1)
	go rs.Consume(ctx, StreamEmailFetched, "consumer-1", func(id string, data []byte) error {
		received <- data
		cancel()
		return nil
	})

	select {
	case data := <-received:
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("handler data is not JSON: %v", err)
		}
		if decoded["messageId"] != "m1" {
			t.Errorf("handler payload = %v", decoded)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never invoked")
	}

	// The handled entry is acknowledged and leaves the pending list.
	waitForPending(t, rs, StreamEmailFetched, 0)
}

func TestConsume_FailedEntryStaysPending(t *testing.T) {
	rs, _ := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rs.CreateGroup(ctx, StreamEmailFetched); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := rs.Publish(ctx, StreamEmailFetched, map[string]any{"messageId": "m1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	handled := make(chan struct{}, 1)
	go rs.Consume(ctx, StreamEmailFetched, "consumer-1", func(id string, data []byte) error {
		handled <- struct{}{}
		cancel()
		return context.DeadlineExceeded
	})

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never invoked")
	}

	waitForPending(t, rs, StreamEmailFetched, 1)
}

func waitForPending(t *testing.T, rs *RedisStream, stream string, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := rs.Pending(context.Background(), stream)
		if err != nil {
			t.Fatalf("Pending: %v", err)
		}
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("pending = %d, want %d", got, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

package worker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRateLimiter_ExhaustsAndRefills(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d denied with tokens available", i)
		}
	}
	if rl.Allow() {
		t.Error("request allowed with bucket empty")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow() {
		t.Error("request denied after refill interval")
	}
}

func TestRateLimiter_RefillCapsAtMax(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)

	// Several intervals pass; the bucket still holds at most maxTokens.
	time.Sleep(50 * time.Millisecond)
	allowed := 0
	for i := 0; i < 10; i++ {
		if rl.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed = %d, want 2", allowed)
	}
}

func TestGetJobTimeout(t *testing.T) {
	p := NewPool(NewHandler(nil, nil), &PoolConfig{
		JobTimeout: 60 * time.Second,
		JobTimeoutByType: map[JobType]time.Duration{
			JobEmailAnalyze: 90 * time.Second,
		},
	}, zerolog.Nop())

	if got := p.getJobTimeout(JobEmailAnalyze); got != 90*time.Second {
		t.Errorf("analyze timeout = %s, want 90s", got)
	}
	if got := p.getJobTimeout("unmapped.type"); got != 60*time.Second {
		t.Errorf("fallback timeout = %s, want 60s", got)
	}
}

func TestUpdateAvgProcessTime(t *testing.T) {
	p := NewPool(NewHandler(nil, nil), DefaultPoolConfig(), zerolog.Nop())

	p.updateAvgProcessTime(100)
	if got := p.GetMetrics().AvgProcessTime; got != 100 {
		t.Errorf("first sample avg = %d, want 100", got)
	}

	p.updateAvgProcessTime(200)
	// Moving average weights history 9:1.
	if got := p.GetMetrics().AvgProcessTime; got != 110 {
		t.Errorf("avg after second sample = %d, want 110", got)
	}
}

func TestSubmit_BeforeStart(t *testing.T) {
	p := NewPool(NewHandler(nil, nil), DefaultPoolConfig(), zerolog.Nop())

	if p.Submit(NewMessage(JobEmailAnalyze, nil)) {
		t.Error("Submit accepted a job before Start")
	}
}

func TestPool_ProcessesSubmittedJob(t *testing.T) {
	cfg := DefaultPoolConfig()
	cfg.MaxWorkers = 2
	cfg.BatchSize = 1

	// Unknown job types are dropped by the dispatcher without error,
	// which is enough to drive a message through the pool machinery.
	p := NewPool(NewHandler(nil, nil), cfg, zerolog.Nop())
	p.Start()
	defer p.Stop()

	if !p.Submit(NewMessage("noop.job", nil)) {
		t.Fatal("Submit rejected")
	}

	deadline := time.Now().Add(5 * time.Second)
	for p.GetMetrics().JobsProcessed < 1 {
		if time.Now().After(deadline) {
			t.Fatalf("job never processed: %+v", p.GetMetrics())
		}
		time.Sleep(10 * time.Millisecond)
	}

	m := p.GetMetrics()
	if m.JobsFailed != 0 || m.JobsRetried != 0 {
		t.Errorf("unexpected failures: %+v", m)
	}
}

func TestStop_DLQSendAfterShutdownIsSafe(t *testing.T) {
	p := NewPool(NewHandler(nil, nil), DefaultPoolConfig(), zerolog.Nop())
	p.Start()
	p.Stop()

	// A job that outlived the close timeout may still hand its message
	// to the DLQ after Stop returned. The channel stays open, so the
	// send must neither panic nor block.
	select {
	case p.dlq <- NewMessage(JobEmailAnalyze, nil):
	default:
		t.Error("buffered DLQ send did not complete")
	}
}

func TestNewMessage(t *testing.T) {
	payload := map[string]any{"messageId": "m1"}
	msg := NewMessage(JobEmailAnalyze, payload)

	if msg.ID == "" {
		t.Error("message has no id")
	}
	if msg.Type != JobEmailAnalyze {
		t.Errorf("Type = %q", msg.Type)
	}
	if msg.Retries != 0 {
		t.Errorf("Retries = %d, want 0", msg.Retries)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

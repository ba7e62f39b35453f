package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"analyzer_server/adapter/in/worker"
	"analyzer_server/config"
	"analyzer_server/internal/scheduler"
	"analyzer_server/internal/stream"
	"analyzer_server/pkg/logger"
)

// Worker runs the stream consumer, the worker pool and the summary
// scheduler.
type Worker struct {
	pool      *worker.Pool
	consumer  *stream.Consumer
	scheduler *scheduler.Scheduler
	deps      *Dependencies
	ctx       context.Context
	cancel    context.CancelFunc
	zlog      zerolog.Logger
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "analyzer-worker",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	emailProcessor := worker.NewEmailProcessor(deps.Analyzer)
	reportProcessor := worker.NewReportProcessor(deps.Reporter)
	handler := worker.NewHandler(emailProcessor, reportProcessor)

	defaultConfig := worker.DefaultPoolConfig()
	poolConfig := &worker.PoolConfig{
		MaxWorkers:       cfg.WorkerMax,
		QueueSize:        cfg.WorkerQueueSize,
		JobTimeout:       time.Duration(cfg.JobTimeoutSec) * time.Second,
		JobTimeoutByType: defaultConfig.JobTimeoutByType,
		BatchSize:        defaultConfig.BatchSize,
		WorkerChanSize:   defaultConfig.WorkerChanSize,
		RatePerSecond:    cfg.WorkerRatePerS,
		MaxRetries:       defaultConfig.MaxRetries,
	}
	if poolConfig.MaxWorkers == 0 {
		poolConfig.MaxWorkers = defaultConfig.MaxWorkers
	}

	pool := worker.NewPool(handler, poolConfig, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:     pool,
		consumer: stream.NewConsumer(deps.Stream, pool, cfg.ConsumerID),
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
		zlog:     zlog,
	}

	if cfg.SummaryEnabled {
		w.scheduler = scheduler.New(pool, cfg.SummaryHour, cfg.SummaryMinute)
		logger.Info("daily summary scheduled at %02d:%02d", cfg.SummaryHour, cfg.SummaryMinute)
	}

	return w, cleanup, nil
}

func (w *Worker) Start() {
	w.pool.Start()

	w.zlog.Info().Msg("starting stream consumer...")
	w.consumer.Start(w.ctx)

	if w.scheduler != nil {
		w.scheduler.Start(w.ctx)
	}

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()
	w.pool.Stop()
}

func (w *Worker) Submit(msg *worker.Message) bool {
	return w.pool.Submit(msg)
}

func (w *Worker) GetMetrics() worker.PoolMetrics {
	return w.pool.GetMetrics()
}

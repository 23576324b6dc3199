package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// QueueDefault is the only queue this deployment uses.
const QueueDefault = "default"

// Worker wraps the asynq server and its cron scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// WorkerConfig collects the dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts    asynq.RedisClientOpt
	Logger       *slog.Logger
	LowStockScan *LowStockScanner
	DailySummary *DailySummaryWarmer
}

// NewWorker constructs the worker with both handlers mounted and their
// schedules registered: a low stock scan every hour, a daily summary just
// after midnight.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeLowStockScan, cfg.LowStockScan.Handle)
	mux.HandleFunc(TypeDailySummary, cfg.DailySummary.Handle)

	scheduler := asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register("0 * * * *", NewLowStockScanTask(), asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}
	// The empty date means "yesterday" at handling time.
	summaryTask := asynq.NewTask(TypeDailySummary, nil)
	if _, err := scheduler.Register("5 0 * * *", summaryTask, asynq.Queue(QueueDefault)); err != nil {
		return nil, err
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueLowStockScan queues an immediate low stock scan.
func (c *Client) EnqueueLowStockScan(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewLowStockScanTask(), asynq.Queue(QueueDefault))
}

// EnqueueDailySummary queues a summary rebuild for the given day.
func (c *Client) EnqueueDailySummary(ctx context.Context, day time.Time) (*asynq.TaskInfo, error) {
	task, err := NewDailySummaryTask(day)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

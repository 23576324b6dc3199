package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/toyshop-pos/toyshop/internal/reports"
)

const (
	summaryKeyPrefix = "toyshop:reports:daily:"
	summaryTTL       = 48 * time.Hour
)

// SummarySource exposes the sales aggregation to the warmer.
type SummarySource interface {
	SalesSummary(ctx context.Context, period reports.Period) (reports.SalesSummary, error)
}

// DailySummaryWarmer precomputes a day's sales summary into Redis so the
// dashboard does not hit PostgreSQL for closed days.
type DailySummaryWarmer struct {
	source SummarySource
	redis  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewDailySummaryWarmer constructs the warmer.
func NewDailySummaryWarmer(source SummarySource, client *redis.Client, logger *slog.Logger) *DailySummaryWarmer {
	return &DailySummaryWarmer{source: source, redis: client, logger: logger, now: time.Now}
}

// Handle processes a daily summary task. An empty payload summarizes
// yesterday.
func (w *DailySummaryWarmer) Handle(ctx context.Context, task *asynq.Task) error {
	day := w.now().UTC().AddDate(0, 0, -1)
	if len(task.Payload()) > 0 {
		var payload DailySummaryPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: unmarshal daily summary payload: %w", err)
		}
		parsed, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			return fmt.Errorf("jobs: invalid summary date %q: %w", payload.Date, err)
		}
		day = parsed
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	summary, err := w.source.SalesSummary(ctx, reports.Period{From: from, To: from.AddDate(0, 0, 1)})
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("jobs: marshal summary: %w", err)
	}

	key := summaryKeyPrefix + from.Format("2006-01-02")
	if err := w.redis.Set(ctx, key, encoded, summaryTTL).Err(); err != nil {
		return fmt.Errorf("jobs: store summary: %w", err)
	}

	w.logger.Info("daily summary warmed",
		slog.String("date", from.Format("2006-01-02")),
		slog.Int("sales", summary.SaleCount))
	return nil
}

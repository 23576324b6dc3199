// Package jobs holds the background task definitions and their asynq
// handlers: low stock scanning and daily summary warming.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names routed through the asynq mux.
const (
	TypeLowStockScan = "inventory:low_stock_scan"
	TypeDailySummary = "reports:daily_summary"
)

// DailySummaryPayload selects the day to summarize.
type DailySummaryPayload struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// NewLowStockScanTask builds the low stock scan task. It carries no payload.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TypeLowStockScan, nil)
}

// NewDailySummaryTask builds the daily summary task for the given day.
func NewDailySummaryTask(day time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(DailySummaryPayload{Date: day.Format("2006-01-02")})
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal daily summary payload: %w", err)
	}
	return asynq.NewTask(TypeDailySummary, payload), nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/stockroom/internal/events"
	"github.com/odyssey-erp/stockroom/internal/products"
)

// StockCounter counts products below the low stock threshold.
type StockCounter interface {
	CountLowStock(ctx context.Context) (int, error)
}

// ScanRecorder receives scan metrics.
type ScanRecorder interface {
	LowStockProducts(n int)
	JobProcessed(task string, err error)
}

// LowStockScanJob refreshes the low stock gauge and announces shortages.
type LowStockScanJob struct {
	Counter   StockCounter
	Publisher events.Publisher
	Metrics   ScanRecorder
	Logger    *slog.Logger
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(counter StockCounter, publisher events.Publisher, metrics ScanRecorder, logger *slog.Logger) *LowStockScanJob {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LowStockScanJob{Counter: counter, Publisher: publisher, Metrics: metrics, Logger: logger}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Counter == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}
	defer func() {
		if j.Metrics != nil {
			j.Metrics.JobProcessed(TaskLowStockScan, err)
		}
	}()

	start := time.Now()
	logger := j.Logger.With(slog.String("reason", payload.Reason))
	count, err := j.Counter.CountLowStock(ctx)
	if err != nil {
		logger.Error("low stock scan failed", slog.Any("error", err))
		return err
	}
	if j.Metrics != nil {
		j.Metrics.LowStockProducts(count)
	}
	if count > 0 {
		event := events.New(events.StockLow, map[string]int{
			"lowStockCount": count,
			"threshold":     products.LowStockThreshold,
		})
		if pubErr := j.Publisher.Publish(ctx, event); pubErr != nil {
			logger.Warn("publish low stock event", slog.Any("error", pubErr))
		}
	}
	logger.Info("completed low stock scan", slog.Int("low_stock", count), slog.Duration("duration", time.Since(start)))
	return nil
}

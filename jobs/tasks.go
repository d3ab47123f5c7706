package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan counts products below the low stock threshold.
	TaskLowStockScan = "stock:low_scan"
)

// LowStockScanPayload describes why a scan was requested.
type LowStockScanPayload struct {
	Reason string `json:"reason"`
}

// NewLowStockScanTask constructs a low stock scan task.
func NewLowStockScanTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data, asynq.Queue(QueueDefault)), nil
}

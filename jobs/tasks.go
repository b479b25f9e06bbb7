package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLowStockAlert is the task type for low stock notifications.
	TaskTypeLowStockAlert = "stock:low_alert"
	// TaskTypeStatusRefresh is the task type for the periodic status sweep.
	TaskTypeStatusRefresh = "catalog:status_refresh"
)

// LowStockAlertPayload describes a product whose status dropped below the
// in-stock threshold.
type LowStockAlertPayload struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Status      string  `json:"status"`
}

// NewLowStockAlertTask constructs an Asynq task.
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockAlert, data), nil
}

// HandleLowStockAlertTask processes TaskTypeLowStockAlert tasks.
func HandleLowStockAlertTask(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: deliver via SMS/email gateway once one is provisioned.
	slog.Default().Warn("low stock alert",
		slog.Int64("product_id", payload.ProductID),
		slog.String("product", payload.ProductName),
		slog.Float64("quantity", payload.Quantity),
		slog.String("status", payload.Status))
	return nil
}

// NewStatusRefreshTask constructs the periodic status sweep task.
func NewStatusRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStatusRefresh, nil)
}

package integration

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/stock"
	"github.com/farmstock/farmstock/jobs"
)

// ReportInvalidator flushes cached reports when the ledger mutates stock.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// AlertEnqueuer submits low stock alert tasks to the job queue.
type AlertEnqueuer interface {
	EnqueueLowStockAlert(ctx context.Context, payload jobs.LowStockAlertPayload) (*asynq.TaskInfo, error)
}

// Hooks wires ledger events into the reporting cache and the job queue.
type Hooks struct {
	reports ReportInvalidator
	alerts  AlertEnqueuer
	logger  *slog.Logger
}

// NewHooks constructs integration hooks. Either dependency may be nil.
func NewHooks(reports ReportInvalidator, alerts AlertEnqueuer, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{reports: reports, alerts: alerts, logger: logger}
}

// HandleStockAdjustmentPosted invalidates cached reports and raises a low
// stock alert when the adjustment dropped the product's status.
func (h *Hooks) HandleStockAdjustmentPosted(ctx context.Context, evt stock.AdjustmentPostedEvent) error {
	if h == nil {
		return nil
	}
	if h.reports != nil {
		if err := h.reports.Invalidate(ctx); err != nil {
			h.logger.Warn("report cache invalidation failed", slog.Any("error", err))
		}
	}
	if h.alerts != nil && statusDropped(evt.OldStatus, evt.NewStatus) {
		payload := jobs.LowStockAlertPayload{
			ProductID:   evt.ProductID,
			ProductName: evt.ProductName,
			Quantity:    evt.QuantityAfter,
			Status:      string(evt.NewStatus),
		}
		if _, err := h.alerts.EnqueueLowStockAlert(ctx, payload); err != nil {
			h.logger.Error("enqueue low stock alert failed",
				slog.Int64("product_id", evt.ProductID),
				slog.Any("error", err))
			return err
		}
	}
	return nil
}

// statusDropped reports whether the transition entered an alertable state.
func statusDropped(old, next catalog.Status) bool {
	if old == next {
		return false
	}
	return next == catalog.StatusLowStock || next == catalog.StatusOutOfStock
}

package stock

import (
	"context"
	"time"

	"github.com/farmstock/farmstock/internal/catalog"
)

// AdjustmentPostedEvent represents a committed stock adjustment.
type AdjustmentPostedEvent struct {
	ProductID     int64
	ProductName   string
	Delta         float64
	QuantityAfter float64
	OldStatus     catalog.Status
	NewStatus     catalog.Status
	PostedAt      time.Time
}

// IntegrationHandler receives ledger events after commit.
type IntegrationHandler interface {
	HandleStockAdjustmentPosted(ctx context.Context, evt AdjustmentPostedEvent) error
}

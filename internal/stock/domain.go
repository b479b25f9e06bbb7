package stock

import (
	"errors"
	"time"

	"github.com/farmstock/farmstock/internal/catalog"
)

// Reason classifies why a stock movement happened.
type Reason string

const (
	ReasonOrder  Reason = "ORDER"
	ReasonExport Reason = "EXPORT"
	ReasonRefill Reason = "REFILL"
	ReasonManual Reason = "MANUAL"
)

// Movement records one applied quantity change on a product.
type Movement struct {
	ID            int64
	ProductID     int64
	Delta         float64
	QuantityAfter float64
	Reason        Reason
	RefModule     string
	RefID         string
	Note          string
	PostedAt      time.Time
}

// AdjustmentInput describes a request to change a product's quantity.
// Negative delta is consumption, positive is restoration.
type AdjustmentInput struct {
	ProductID int64
	Delta     float64
	Reason    Reason
	RefModule string
	RefID     string
	Note      string
	ActorID   int64
}

// Adjustment is the outcome of a posted adjustment. Applied may differ from
// the requested delta when the zero floor absorbed part of a decrement.
type Adjustment struct {
	ProductID     int64
	Delta         float64
	Applied       float64
	QuantityAfter float64
	Status        catalog.Status
	PostedAt      time.Time
}

// BatchItem is one entry of a multi-item adjustment pass.
type BatchItem struct {
	ProductID int64
	Delta     float64
	Note      string
}

// ItemOutcome classifies the result of one batch item.
type ItemOutcome string

const (
	ItemApplied ItemOutcome = "applied"
	ItemSkipped ItemOutcome = "skipped"
	ItemFailed  ItemOutcome = "failed"
)

// ItemResult reports what happened to one batch item so callers can observe
// exactly which items were not applied.
type ItemResult struct {
	ProductID int64
	Delta     float64
	Outcome   ItemOutcome
	Detail    string
}

// ErrInvalidAmount indicates a non-positive refill or reservation quantity.
var ErrInvalidAmount = errors.New("stock: amount must be positive")

package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
)

// RepositoryPort abstracts repository usage for the ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, productID int64) (catalog.Product, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Ledger is the only component that mutates product quantity and status.
type Ledger struct {
	repo        RepositoryPort
	audit       AuditPort
	integration IntegrationHandler
	logger      *slog.Logger
	now         func() time.Time
}

// NewLedger builds Ledger.
func NewLedger(repo RepositoryPort, audit AuditPort, integration IntegrationHandler, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{repo: repo, audit: audit, integration: integration, logger: logger, now: time.Now}
}

// Adjust applies a signed quantity delta to one product, re-derives its
// status and records the movement. A decrement that would drive quantity
// below zero is clamped to exactly zero; the absorbed shortfall is logged.
func (l *Ledger) Adjust(ctx context.Context, input AdjustmentInput) (Adjustment, error) {
	if input.ProductID <= 0 {
		return Adjustment{}, fmt.Errorf("%w: product id required", shared.ErrValidation)
	}
	if input.Delta == 0 {
		return Adjustment{}, fmt.Errorf("%w: delta must be non zero", shared.ErrValidation)
	}
	if input.RefID != "" {
		if _, err := uuid.Parse(input.RefID); err != nil {
			return Adjustment{}, fmt.Errorf("%w: invalid ref id: %v", shared.ErrValidation, err)
		}
	}
	now := l.now().UTC()

	var result Adjustment
	var evt AdjustmentPostedEvent
	err := l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		applied := input.Delta
		newQty := product.Quantity + applied
		if newQty < 0 {
			l.logger.Warn("stock adjustment clamped at zero",
				slog.Int64("product_id", product.ID),
				slog.Float64("delta", input.Delta),
				slog.Float64("shortfall", -newQty))
			applied = -product.Quantity
			newQty = 0
		}
		oldStatus := product.Status
		product.Quantity = newQty
		product.Status = catalog.DeriveStatus(newQty, product.MinStockLevel, product.ExpiryDate, now)
		if err := tx.UpdateProductStock(ctx, product); err != nil {
			return err
		}
		movement := Movement{
			ProductID:     product.ID,
			Delta:         applied,
			QuantityAfter: newQty,
			Reason:        input.Reason,
			RefModule:     input.RefModule,
			RefID:         input.RefID,
			Note:          input.Note,
			PostedAt:      now,
		}
		if _, err := tx.InsertMovement(ctx, movement); err != nil {
			return err
		}
		result = Adjustment{
			ProductID:     product.ID,
			Delta:         input.Delta,
			Applied:       applied,
			QuantityAfter: newQty,
			Status:        product.Status,
			PostedAt:      now,
		}
		evt = AdjustmentPostedEvent{
			ProductID:     product.ID,
			ProductName:   product.Name,
			Delta:         applied,
			QuantityAfter: newQty,
			OldStatus:     oldStatus,
			NewStatus:     product.Status,
			PostedAt:      now,
		}
		return nil
	})
	if err != nil {
		return Adjustment{}, err
	}

	if l.audit != nil {
		_ = l.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   fmt.Sprintf("stock:%s", input.Reason),
			Entity:   "product",
			EntityID: fmt.Sprintf("%d", input.ProductID),
			Meta: map[string]any{
				"delta":          input.Delta,
				"applied":        result.Applied,
				"quantity_after": result.QuantityAfter,
				"ref_module":     input.RefModule,
				"ref_id":         input.RefID,
			},
		})
	}
	if l.integration != nil {
		if err := l.integration.HandleStockAdjustmentPosted(ctx, evt); err != nil {
			l.logger.Warn("stock integration handler failed", slog.Any("error", err))
		}
	}
	return result, nil
}

// AdjustBatch applies adjustments sequentially in caller order. A missing or
// inactive product skips that item and continues; other failures are reported
// per item. The batch never aborts partway.
func (l *Ledger) AdjustBatch(ctx context.Context, reason Reason, refModule, refID string, items []BatchItem) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		_, err := l.Adjust(ctx, AdjustmentInput{
			ProductID: item.ProductID,
			Delta:     item.Delta,
			Reason:    reason,
			RefModule: refModule,
			RefID:     refID,
			Note:      item.Note,
		})
		switch {
		case err == nil:
			results = append(results, ItemResult{ProductID: item.ProductID, Delta: item.Delta, Outcome: ItemApplied})
		case errors.Is(err, shared.ErrNotFound):
			l.logger.Warn("batch adjustment skipped missing product",
				slog.Int64("product_id", item.ProductID),
				slog.Float64("delta", item.Delta))
			results = append(results, ItemResult{ProductID: item.ProductID, Delta: item.Delta, Outcome: ItemSkipped, Detail: err.Error()})
		default:
			l.logger.Error("batch adjustment failed",
				slog.Int64("product_id", item.ProductID),
				slog.Any("error", err))
			results = append(results, ItemResult{ProductID: item.ProductID, Delta: item.Delta, Outcome: ItemFailed, Detail: err.Error()})
		}
	}
	return results
}

// Refill adds stock and restarts the shelf-life clock: creation date becomes
// now and expiry is recomputed from the product category.
func (l *Ledger) Refill(ctx context.Context, productID int64, amount float64) (catalog.Product, error) {
	if amount <= 0 {
		return catalog.Product{}, fmt.Errorf("%w: refill %v", shared.ErrValidation, ErrInvalidAmount)
	}
	now := l.now().UTC()

	var refilled catalog.Product
	err := l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		expiry, err := catalog.ExpiryFor(product.Category, now)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		product.CreationDate = now
		product.ExpiryDate = expiry
		product.Quantity += amount
		product.Status = catalog.DeriveStatus(product.Quantity, product.MinStockLevel, product.ExpiryDate, now)
		if err := tx.UpdateProductStock(ctx, product); err != nil {
			return err
		}
		movement := Movement{
			ProductID:     product.ID,
			Delta:         amount,
			QuantityAfter: product.Quantity,
			Reason:        ReasonRefill,
			RefModule:     "catalog",
			PostedAt:      now,
		}
		if _, err := tx.InsertMovement(ctx, movement); err != nil {
			return err
		}
		refilled = product
		return nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return refilled, nil
}

// Reserve validates that an order line could be fulfilled right now. It never
// mutates; the decrement happens later in the caller's mutation pass.
func (l *Ledger) Reserve(ctx context.Context, productID int64, quantity float64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: reserve %v", shared.ErrValidation, ErrInvalidAmount)
	}
	product, err := l.repo.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return fmt.Errorf("%w: product %s is inactive", shared.ErrValidation, product.Name)
	}
	now := l.now().UTC()
	if product.ExpiryDate.Before(now) {
		return fmt.Errorf("%w: product %s expired on %s", shared.ErrValidation, product.Name, product.ExpiryDate.Format("2006-01-02"))
	}
	if product.Quantity < quantity {
		return fmt.Errorf("%w: insufficient stock for %s: available %g, requested %g",
			shared.ErrValidation, product.Name, product.Quantity, quantity)
	}
	return nil
}

// Available returns the product for availability checks on the export path.
func (l *Ledger) Available(ctx context.Context, productID int64) (catalog.Product, error) {
	return l.repo.GetProduct(ctx, productID)
}

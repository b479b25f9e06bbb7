package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
	"github.com/farmstock/farmstock/internal/stock"
)

// RepositoryPort abstracts order persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) (int64, error)
	Get(ctx context.Context, id int64) (Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) error
	MarkCancelled(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
}

// StockLedger is the ledger surface the order lifecycle needs.
type StockLedger interface {
	Reserve(ctx context.Context, productID int64, quantity float64) error
	AdjustBatch(ctx context.Context, reason stock.Reason, refModule, refID string, items []stock.BatchItem) []stock.ItemResult
	Available(ctx context.Context, productID int64) (catalog.Product, error)
}

// Service drives an order through creation, status transitions, cancellation
// and soft deletion, keeping stock effects symmetric across them.
type Service struct {
	repo     RepositoryPort
	ledger   StockLedger
	logger   *slog.Logger
	numberFn func() string
}

// NewService builds Service.
func NewService(repo RepositoryPort, ledger StockLedger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, logger: logger, numberFn: generateOrderNumber}
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// Create validates every line against the ledger before committing anything,
// persists the order, then runs the decrement pass. The decrement pass is not
// rolled back on partial failure; per-item results report what was applied.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error) {
	if err := ValidateCreateRequest(req); err != nil {
		return CreateOrderResult{}, err
	}

	// Validation pre-pass across the whole item list, in caller order.
	// The first failure rejects the create with nothing persisted.
	for _, item := range req.Items {
		if err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			return CreateOrderResult{}, err
		}
	}

	items := make([]OrderItem, 0, len(req.Items))
	var subtotal float64
	for _, reqItem := range req.Items {
		product, err := s.ledger.Available(ctx, reqItem.ProductID)
		if err != nil {
			return CreateOrderResult{}, err
		}
		lineTotal := product.Price * reqItem.Quantity
		subtotal += lineTotal
		items = append(items, OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  reqItem.Quantity,
			LineTotal: lineTotal,
		})
	}

	order := Order{
		OrderNumber:       s.numberFn(),
		Customer:          req.Customer,
		Items:             items,
		Subtotal:          subtotal,
		ShippingCost:      req.ShippingCost,
		Tax:               req.Tax,
		TotalAmount:       subtotal + req.ShippingCost + req.Tax,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     PaymentPending,
		Status:            StatusPending,
		TransactionID:     req.TransactionID,
		EstimatedDelivery: req.EstimatedDelivery,
		IsActive:          true,
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return CreateOrderResult{}, err
	}

	results := s.applyStockPass(ctx, order.OrderNumber, items, -1)

	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return CreateOrderResult{}, err
	}
	return CreateOrderResult{Order: created, StockResults: results}, nil
}

// Cancel marks the order cancelled and refunded, then restores the reserved
// stock. Orders already delivered or cancelled are rejected, so the
// restoration can never run twice.
func (s *Service) Cancel(ctx context.Context, id int64) (CreateOrderResult, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if order.Status.Terminal() {
		return CreateOrderResult{}, fmt.Errorf("%w: %v: order %s is already %s",
			shared.ErrValidation, ErrInvalidStatus, order.OrderNumber, order.Status)
	}

	if err := s.repo.MarkCancelled(ctx, id); err != nil {
		return CreateOrderResult{}, err
	}

	results := s.applyStockPass(ctx, order.OrderNumber, order.Items, +1)

	cancelled, err := s.repo.Get(ctx, id)
	if err != nil {
		return CreateOrderResult{}, err
	}
	return CreateOrderResult{Order: cancelled, StockResults: results}, nil
}

// Delete soft-deletes the order. Stock is restored only when the order is in
// a non-terminal state: delivered goods are gone for good and cancelled
// orders were already restored once.
func (s *Service) Delete(ctx context.Context, id int64) ([]stock.ItemResult, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsActive {
		return nil, fmt.Errorf("%w: order %s is already deleted", shared.ErrValidation, order.OrderNumber)
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, nil
	}
	return s.applyStockPass(ctx, order.OrderNumber, order.Items, +1), nil
}

// UpdateStatus moves the order along the transition table. No stock effects.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next OrderStatus) (Order, error) {
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: unknown order status %q", shared.ErrValidation, next)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !order.Status.CanTransition(next) {
		return Order{}, fmt.Errorf("%w: %v: %s -> %s", shared.ErrValidation, ErrInvalidStatus, order.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id)
}

// UpdatePaymentStatus sets the payment status. No stock effects.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, next PaymentStatus) (Order, error) {
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: unknown payment status %q", shared.ErrValidation, next)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Order{}, err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, next); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns active orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, shared.Pagination, error) {
	result, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// applyStockPass runs the decrement (sign=-1) or restore (sign=+1) pass.
// Each list entry is processed independently, duplicates included, in caller
// order. Missing products are skipped with a warning, never aborting the pass.
func (s *Service) applyStockPass(ctx context.Context, orderNumber string, items []OrderItem, sign float64) []stock.ItemResult {
	batch := make([]stock.BatchItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, stock.BatchItem{
			ProductID: item.ProductID,
			Delta:     sign * item.Quantity,
			Note:      orderNumber,
		})
	}
	results := s.ledger.AdjustBatch(ctx, stock.ReasonOrder, "orders", uuid.NewString(), batch)
	for _, r := range results {
		if r.Outcome != stock.ItemApplied {
			s.logger.Warn("order stock pass item not applied",
				slog.String("order_number", orderNumber),
				slog.Int64("product_id", r.ProductID),
				slog.String("outcome", string(r.Outcome)),
				slog.String("detail", r.Detail))
		}
	}
	return results
}

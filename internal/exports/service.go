package exports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
	"github.com/farmstock/farmstock/internal/stock"
)

// RepositoryPort abstracts export entry persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, e Entry) (int64, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Entry, int, error)
}

// StockLedger is the ledger surface the export controller needs.
type StockLedger interface {
	Adjust(ctx context.Context, input stock.AdjustmentInput) (stock.Adjustment, error)
	Available(ctx context.Context, productID int64) (catalog.Product, error)
}

// Service drives export entries through creation, delta-only quantity
// revision, and deletion with full restoration of the committed quantity.
type Service struct {
	repo   RepositoryPort
	ledger StockLedger
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, ledger StockLedger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, logger: logger}
}

// Create validates the request against the product, persists the entry, then
// deducts the committed quantity from stock.
func (s *Service) Create(ctx context.Context, req CreateEntryRequest) (Entry, error) {
	if err := ValidateCreateRequest(req); err != nil {
		return Entry{}, err
	}
	product, err := s.ledger.Available(ctx, req.ProductID)
	if err != nil {
		return Entry{}, err
	}
	if !product.IsActive {
		return Entry{}, fmt.Errorf("%w: product %s is inactive", shared.ErrValidation, product.Name)
	}
	if product.Market != catalog.MarketExport {
		return Entry{}, fmt.Errorf("%w: product %s is not listed for the export market", shared.ErrValidation, product.Name)
	}
	if product.Quantity < req.Quantity {
		return Entry{}, fmt.Errorf("%w: insufficient stock for %s: available %g, requested %g",
			shared.ErrValidation, product.Name, product.Quantity, req.Quantity)
	}

	entry := Entry{
		ProductID:     req.ProductID,
		ExportCountry: req.ExportCountry,
		ExportDate:    req.ExportDate,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		ExportPrice:   req.ExportPrice,
		Status:        StatusPending,
	}
	id, err := s.repo.Create(ctx, entry)
	if err != nil {
		return Entry{}, err
	}

	s.adjustTolerant(ctx, req.ProductID, -req.Quantity, fmt.Sprintf("export entry %d", id))

	return s.repo.Get(ctx, id)
}

// Update patches the entry. A quantity change applies only the delta between
// the old and new committed quantity: a full re-deduction would double-count
// the portion already committed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEntryRequest) (Entry, error) {
	if err := ValidateUpdateRequest(req); err != nil {
		return Entry{}, err
	}
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	if req.Quantity != nil {
		delta := *req.Quantity - entry.Quantity
		if delta > 0 {
			product, err := s.ledger.Available(ctx, entry.ProductID)
			if err != nil {
				return Entry{}, err
			}
			if product.Quantity < delta {
				return Entry{}, fmt.Errorf("%w: insufficient stock for %s: available %g, additional %g requested",
					shared.ErrValidation, product.Name, product.Quantity, delta)
			}
		}
		if delta != 0 {
			s.adjustTolerant(ctx, entry.ProductID, -delta, fmt.Sprintf("export entry %d revision", id))
		}
		entry.Quantity = *req.Quantity
	}
	if req.ExportCountry != nil {
		entry.ExportCountry = *req.ExportCountry
	}
	if req.ExportDate != nil {
		entry.ExportDate = *req.ExportDate
	}
	if req.Unit != nil {
		entry.Unit = *req.Unit
	}
	if req.ExportPrice != nil {
		entry.ExportPrice = *req.ExportPrice
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return Entry{}, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus sets the shipment status. No stock side effects.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next EntryStatus) (Entry, error) {
	if !next.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown export status %q", shared.ErrValidation, next)
	}
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	entry.Status = next
	if err := s.repo.Update(ctx, entry); err != nil {
		return Entry{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete restores the entry's full committed quantity, then removes it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.adjustTolerant(ctx, entry.ProductID, entry.Quantity, fmt.Sprintf("export entry %d deleted", id))
	return s.repo.Delete(ctx, id)
}

// Get loads one entry.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// List returns entries matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, shared.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// adjustTolerant posts a ledger adjustment, tolerating a vanished product:
// the entry only weakly references the product, so a missing row downgrades
// to a warning instead of failing the surrounding operation.
func (s *Service) adjustTolerant(ctx context.Context, productID int64, delta float64, note string) {
	_, err := s.ledger.Adjust(ctx, stock.AdjustmentInput{
		ProductID: productID,
		Delta:     delta,
		Reason:    stock.ReasonExport,
		RefModule: "exports",
		Note:      note,
	})
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, shared.ErrNotFound) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "export stock adjustment not applied",
			slog.Int64("product_id", productID),
			slog.Float64("delta", delta),
			slog.Any("error", err))
	}
}

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/farmstock/farmstock/internal/shared"
)

// RepositoryPort abstracts product persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, p Product) (int64, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	ListActive(ctx context.Context, market Market) ([]Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Service coordinates product catalog operations. All quantity mutation goes
// through the stock ledger, never through this service.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateProductInput describes a product creation request.
type CreateProductInput struct {
	Name          string
	Category      Category
	Quantity      float64
	Unit          Unit
	Price         float64
	Market        Market
	MinStockLevel float64
}

// Create validates the input, derives expiry and status, and persists the product.
func (s *Service) Create(ctx context.Context, input CreateProductInput) (Product, error) {
	if err := validateCreateInput(input); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	expiry, err := ExpiryFor(input.Category, now)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	minLevel := input.MinStockLevel
	if minLevel == 0 {
		minLevel = DefaultMinStockLevel
	}
	p := Product{
		Name:          input.Name,
		Category:      input.Category,
		Quantity:      input.Quantity,
		Unit:          input.Unit,
		Price:         input.Price,
		Market:        input.Market,
		MinStockLevel: minLevel,
		CreationDate:  now,
		ExpiryDate:    expiry,
		IsActive:      true,
	}
	p.Status = DeriveStatus(p.Quantity, p.MinStockLevel, p.ExpiryDate, now)

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns active products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, shared.Pagination, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return products, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// SoftDelete marks the product inactive. Committed quantity is not reclaimed.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.SetActive(ctx, id, false)
}

// ListActive returns all active products, optionally narrowed by market.
func (s *Service) ListActive(ctx context.Context, market Market) ([]Product, error) {
	return s.repo.ListActive(ctx, market)
}

// ListLowStock returns active products whose freshly derived status is Low Stock.
// The stored status is a cache; the read path re-derives against the clock.
func (s *Service) ListLowStock(ctx context.Context, market Market) ([]Product, error) {
	return s.listByDerivedStatus(ctx, market, StatusLowStock)
}

// ListExpiring returns active products whose freshly derived status is Expiring Soon.
func (s *Service) ListExpiring(ctx context.Context, market Market) ([]Product, error) {
	return s.listByDerivedStatus(ctx, market, StatusExpiringSoon)
}

func (s *Service) listByDerivedStatus(ctx context.Context, market Market, want Status) ([]Product, error) {
	products, err := s.repo.ListActive(ctx, market)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	matched := []Product{}
	for _, p := range products {
		derived := DeriveStatus(p.Quantity, p.MinStockLevel, p.ExpiryDate, now)
		if derived == want {
			p.Status = derived
			matched = append(matched, p)
		}
	}
	return matched, nil
}

package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
)

// CatalogPort is the catalog surface the reporting service reads from.
type CatalogPort interface {
	ListActive(ctx context.Context, market catalog.Market) ([]catalog.Product, error)
	ListLowStock(ctx context.Context, market catalog.Market) ([]catalog.Product, error)
	ListExpiring(ctx context.Context, market catalog.Market) ([]catalog.Product, error)
}

// ProductAlert is the trimmed product view used in summary alert lists.
type ProductAlert struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Category   catalog.Category `json:"category"`
	Quantity   float64          `json:"quantity"`
	Unit       catalog.Unit     `json:"unit"`
	Status     catalog.Status   `json:"status"`
	ExpiryDate time.Time        `json:"expiry_date"`
}

// StockSummary aggregates the current state of the catalog.
type StockSummary struct {
	GeneratedAt        time.Time                    `json:"generated_at"`
	Market             catalog.Market               `json:"market,omitempty"`
	TotalProducts      int                          `json:"total_products"`
	TotalQuantity      float64                      `json:"total_quantity"`
	TotalStockValue    float64                      `json:"total_stock_value"`
	StatusCounts       map[catalog.Status]int       `json:"status_counts"`
	CategoryQuantities map[catalog.Category]float64 `json:"category_quantities"`
	LowStock           []ProductAlert               `json:"low_stock"`
	Expiring           []ProductAlert               `json:"expiring"`
}

// Service produces catalog reports behind a versioned Redis cache.
type Service struct {
	catalog CatalogPort
	cache   *Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(catalogPort CatalogPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalogPort, cache: cache, logger: logger, now: time.Now}
}

// StockSummary computes the summary for the given market ("" means all),
// serving from cache when a fresh copy exists.
func (s *Service) StockSummary(ctx context.Context, market catalog.Market) (StockSummary, error) {
	if market != "" && !market.Valid() {
		return StockSummary{}, fmt.Errorf("%w: unknown market %q", shared.ErrValidation, market)
	}
	key, err := s.cache.BuildKey(ctx, keyStockSummary(string(market))...)
	if err != nil {
		s.logger.Warn("cache key build failed, bypassing cache", slog.Any("error", err))
		return s.buildSummary(ctx, market)
	}
	var summary StockSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		built, err := s.buildSummary(ctx, market)
		if err != nil {
			return nil, err
		}
		return built, nil
	})
	if err != nil {
		return StockSummary{}, err
	}
	return summary, nil
}

// Invalidate bumps the cache version so the next read rebuilds.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) buildSummary(ctx context.Context, market catalog.Market) (StockSummary, error) {
	var (
		active   []catalog.Product
		lowStock []catalog.Product
		expiring []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = s.catalog.ListActive(gctx, market)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.catalog.ListLowStock(gctx, market)
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = s.catalog.ListExpiring(gctx, market)
		return err
	})
	if err := g.Wait(); err != nil {
		return StockSummary{}, err
	}

	now := s.now().UTC()
	summary := StockSummary{
		GeneratedAt:        now,
		Market:             market,
		TotalProducts:      len(active),
		StatusCounts:       map[catalog.Status]int{},
		CategoryQuantities: map[catalog.Category]float64{},
		LowStock:           alerts(lowStock),
		Expiring:           alerts(expiring),
	}
	for _, p := range active {
		status := catalog.DeriveStatus(p.Quantity, p.MinStockLevel, p.ExpiryDate, now)
		summary.StatusCounts[status]++
		summary.CategoryQuantities[p.Category] += p.Quantity
		summary.TotalQuantity += p.Quantity
		summary.TotalStockValue += p.Quantity * p.Price
	}
	return summary, nil
}

func alerts(products []catalog.Product) []ProductAlert {
	out := make([]ProductAlert, 0, len(products))
	for _, p := range products {
		out = append(out, ProductAlert{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Quantity:   p.Quantity,
			Unit:       p.Unit,
			Status:     p.Status,
			ExpiryDate: p.ExpiryDate,
		})
	}
	return out
}

package exports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
	"github.com/farmstock/farmstock/internal/stock"
)

type memRepo struct {
	entries map[int64]Entry
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{entries: map[int64]Entry{}, nextID: 1}
}

func (r *memRepo) Create(_ context.Context, e Entry) (int64, error) {
	e.ID = r.nextID
	r.nextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.entries[e.ID] = e
	return e.ID, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: export entry %d", shared.ErrNotFound, id)
	}
	return e, nil
}

func (r *memRepo) Update(_ context.Context, e Entry) error {
	if _, ok := r.entries[e.ID]; !ok {
		return fmt.Errorf("%w: export entry %d", shared.ErrNotFound, e.ID)
	}
	e.UpdatedAt = time.Now()
	r.entries[e.ID] = e
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: export entry %d", shared.ErrNotFound, id)
	}
	delete(r.entries, id)
	return nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]Entry, int, error) {
	var out []Entry
	for _, e := range r.entries {
		if filter.ProductID != 0 && e.ProductID != filter.ProductID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

type fakeLedger struct {
	products map[int64]catalog.Product
}

func (l *fakeLedger) Available(_ context.Context, productID int64) (catalog.Product, error) {
	p, ok := l.products[productID]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
	}
	return p, nil
}

func (l *fakeLedger) Adjust(_ context.Context, input stock.AdjustmentInput) (stock.Adjustment, error) {
	p, ok := l.products[input.ProductID]
	if !ok {
		return stock.Adjustment{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, input.ProductID)
	}
	applied := input.Delta
	if p.Quantity+applied < 0 {
		applied = -p.Quantity
	}
	p.Quantity += applied
	l.products[input.ProductID] = p
	return stock.Adjustment{
		ProductID:     input.ProductID,
		Delta:         input.Delta,
		Applied:       applied,
		QuantityAfter: p.Quantity,
	}, nil
}

func exportProduct(id int64, qty float64) catalog.Product {
	now := time.Now()
	return catalog.Product{
		ID:            id,
		Name:          fmt.Sprintf("product-%d", id),
		Category:      catalog.CategoryVegetables,
		Quantity:      qty,
		Unit:          catalog.UnitKilogram,
		Price:         4,
		Market:        catalog.MarketExport,
		MinStockLevel: 5,
		CreationDate:  now,
		ExpiryDate:    now.Add(240 * time.Hour),
		Status:        catalog.StatusInStock,
		IsActive:      true,
	}
}

func newTestService(products ...catalog.Product) (*Service, *memRepo, *fakeLedger) {
	ledger := &fakeLedger{products: map[int64]catalog.Product{}}
	for _, p := range products {
		ledger.products[p.ID] = p
	}
	repo := newMemRepo()
	return NewService(repo, ledger, nil), repo, ledger
}

func createRequest(productID int64, qty float64) CreateEntryRequest {
	return CreateEntryRequest{
		ProductID:     productID,
		ExportCountry: "Netherlands",
		ExportDate:    time.Now().Add(72 * time.Hour),
		Quantity:      qty,
		Unit:          catalog.UnitKilogram,
		ExportPrice:   6.5,
	}
}

func TestCreateDeductsCommittedQuantity(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 100))

	entry, err := svc.Create(context.Background(), createRequest(1, 10))
	require.NoError(t, err)
	require.Equal(t, StatusPending, entry.Status)
	require.Equal(t, float64(10), entry.Quantity)
	require.Equal(t, float64(90), ledger.products[1].Quantity)
}

func TestCreateRejectsDomesticProduct(t *testing.T) {
	p := exportProduct(1, 100)
	p.Market = catalog.MarketLocal
	svc, repo, ledger := newTestService(p)

	_, err := svc.Create(context.Background(), createRequest(1, 10))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "not listed for the export market")
	require.Empty(t, repo.entries)
	require.Equal(t, float64(100), ledger.products[1].Quantity)
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	p := exportProduct(1, 100)
	p.IsActive = false
	svc, repo, _ := newTestService(p)

	_, err := svc.Create(context.Background(), createRequest(1, 10))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.entries)
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	svc, repo, ledger := newTestService(exportProduct(1, 8))

	_, err := svc.Create(context.Background(), createRequest(1, 10))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "insufficient stock")
	require.Empty(t, repo.entries)
	require.Equal(t, float64(8), ledger.products[1].Quantity)
}

func TestCreateRejectsMissingProduct(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), createRequest(9, 10))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAppliesDeltaOnly(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)
	require.Equal(t, float64(90), ledger.products[1].Quantity)

	qty := 15.0
	entry, err = svc.Update(ctx, entry.ID, UpdateEntryRequest{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, float64(15), entry.Quantity)
	require.Equal(t, float64(85), ledger.products[1].Quantity)

	qty = 5.0
	entry, err = svc.Update(ctx, entry.ID, UpdateEntryRequest{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, float64(5), entry.Quantity)
	require.Equal(t, float64(95), ledger.products[1].Quantity)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	require.Equal(t, float64(100), ledger.products[1].Quantity)

	_, err = svc.Get(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateRejectsInsufficientDelta(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 20))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 15))
	require.NoError(t, err)
	require.Equal(t, float64(5), ledger.products[1].Quantity)

	qty := 25.0
	_, err = svc.Update(ctx, entry.ID, UpdateEntryRequest{Quantity: &qty})
	require.ErrorIs(t, err, shared.ErrValidation)

	got, err := svc.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, float64(15), got.Quantity)
	require.Equal(t, float64(5), ledger.products[1].Quantity)
}

func TestUpdateUnchangedQuantityPostsNothing(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)

	qty := 10.0
	country := "Belgium"
	entry, err = svc.Update(ctx, entry.ID, UpdateEntryRequest{Quantity: &qty, ExportCountry: &country})
	require.NoError(t, err)
	require.Equal(t, "Belgium", entry.ExportCountry)
	require.Equal(t, float64(90), ledger.products[1].Quantity)
}

func TestUpdatePatchesFields(t *testing.T) {
	svc, _, _ := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)

	price := 9.75
	unit := catalog.UnitCrate
	date := time.Now().Add(120 * time.Hour).Truncate(time.Second)
	entry, err = svc.Update(ctx, entry.ID, UpdateEntryRequest{
		ExportPrice: &price,
		Unit:        &unit,
		ExportDate:  &date,
	})
	require.NoError(t, err)
	require.Equal(t, 9.75, entry.ExportPrice)
	require.Equal(t, catalog.UnitCrate, entry.Unit)
	require.True(t, entry.ExportDate.Equal(date))
	require.Equal(t, float64(10), entry.Quantity)
}

func TestDeleteToleratesVanishedProduct(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)

	delete(ledger.products, 1)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	_, err = svc.Get(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, ledger := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	entry, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)

	entry, err = svc.UpdateStatus(ctx, entry.ID, StatusShipped)
	require.NoError(t, err)
	require.Equal(t, StatusShipped, entry.Status)
	require.Equal(t, float64(90), ledger.products[1].Quantity)

	_, err = svc.UpdateStatus(ctx, entry.ID, EntryStatus("Lost"))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListFiltersByProductAndStatus(t *testing.T) {
	svc, _, _ := newTestService(exportProduct(1, 100), exportProduct(2, 100))
	ctx := context.Background()

	first, err := svc.Create(ctx, createRequest(1, 10))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createRequest(2, 20))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, StatusShipped)
	require.NoError(t, err)

	entries, page, err := svc.List(ctx, ListFilter{ProductID: 1, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, page.Total)

	entries, _, err = svc.List(ctx, ListFilter{Status: StatusShipped, Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, first.ID, entries[0].ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(exportProduct(1, 100))
	ctx := context.Background()

	req := createRequest(1, 10)
	req.Quantity = 0
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, shared.ErrValidation)

	req = createRequest(1, 10)
	req.ExportCountry = ""
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, shared.ErrValidation)

	req = createRequest(1, 10)
	req.Unit = catalog.Unit("barrel")
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, shared.ErrValidation)
}

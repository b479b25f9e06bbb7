package stock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farmstock/farmstock/internal/catalog"
	"github.com/farmstock/farmstock/internal/shared"
)

type memoryRepo struct {
	products  map[int64]catalog.Product
	movements []Movement
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(products ...catalog.Product) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]catalog.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetProduct(ctx context.Context, productID int64) (catalog.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
	}
	return p, nil
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error) {
	p, ok := tx.repo.products[productID]
	if !ok || !p.IsActive {
		return catalog.Product{}, fmt.Errorf("%w: product %d", shared.ErrNotFound, productID)
	}
	return p, nil
}

func (tx *memoryTx) UpdateProductStock(ctx context.Context, p catalog.Product) error {
	tx.repo.products[p.ID] = p
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	tx.repo.nextID++
	m.ID = tx.repo.nextID
	tx.repo.movements = append(tx.repo.movements, m)
	return m.ID, nil
}

func freshProduct(id int64, qty float64) catalog.Product {
	created := time.Now().UTC().Add(-24 * time.Hour)
	expiry, _ := catalog.ExpiryFor(catalog.CategoryVegetables, created)
	return catalog.Product{
		ID:            id,
		Name:          fmt.Sprintf("Product %d", id),
		Category:      catalog.CategoryVegetables,
		Quantity:      qty,
		Unit:          catalog.UnitKilogram,
		Price:         3.5,
		Market:        catalog.MarketLocal,
		MinStockLevel: 5,
		CreationDate:  created,
		ExpiryDate:    expiry,
		Status:        catalog.StatusInStock,
		IsActive:      true,
	}
}

func TestAdjustDecrementAndStatus(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 20))
	ledger := NewLedger(repo, nil, nil, nil)
	ctx := context.Background()

	result, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: 1, Delta: -5, Reason: ReasonOrder})
	require.NoError(t, err)
	require.InDelta(t, 15, result.QuantityAfter, 0.0001)
	require.Equal(t, catalog.StatusInStock, result.Status)

	result, err = ledger.Adjust(ctx, AdjustmentInput{ProductID: 1, Delta: -12, Reason: ReasonOrder})
	require.NoError(t, err)
	require.InDelta(t, 3, result.QuantityAfter, 0.0001)
	require.Equal(t, catalog.StatusLowStock, result.Status)

	require.Len(t, repo.movements, 2)
}

func TestAdjustClampsAtZero(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 5))
	ledger := NewLedger(repo, nil, nil, nil)

	result, err := ledger.Adjust(context.Background(), AdjustmentInput{ProductID: 1, Delta: -8, Reason: ReasonOrder})
	require.NoError(t, err)
	require.InDelta(t, 0, result.QuantityAfter, 0.0001)
	require.InDelta(t, -5, result.Applied, 0.0001)
	require.Equal(t, catalog.StatusOutOfStock, result.Status)
	require.InDelta(t, 0, repo.products[1].Quantity, 0.0001)
}

func TestAdjustMissingProduct(t *testing.T) {
	ledger := NewLedger(newMemoryRepo(), nil, nil, nil)

	_, err := ledger.Adjust(context.Background(), AdjustmentInput{ProductID: 42, Delta: -1, Reason: ReasonOrder})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	ledger := NewLedger(newMemoryRepo(freshProduct(1, 10)), nil, nil, nil)

	_, err := ledger.Adjust(context.Background(), AdjustmentInput{ProductID: 1, Delta: 0, Reason: ReasonManual})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdjustBatchSkipAndContinue(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 10), freshProduct(3, 10))
	ledger := NewLedger(repo, nil, nil, nil)

	results := ledger.AdjustBatch(context.Background(), ReasonOrder, "orders", "", []BatchItem{
		{ProductID: 1, Delta: -4},
		{ProductID: 2, Delta: -4},
		{ProductID: 3, Delta: -4},
	})

	require.Len(t, results, 3)
	require.Equal(t, ItemApplied, results[0].Outcome)
	require.Equal(t, ItemSkipped, results[1].Outcome)
	require.Equal(t, ItemApplied, results[2].Outcome)
	require.InDelta(t, 6, repo.products[1].Quantity, 0.0001)
	require.InDelta(t, 6, repo.products[3].Quantity, 0.0001)
}

// Duplicate product ids in one batch each decrement independently.
func TestAdjustBatchDuplicateEntries(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 20))
	ledger := NewLedger(repo, nil, nil, nil)

	results := ledger.AdjustBatch(context.Background(), ReasonOrder, "orders", "", []BatchItem{
		{ProductID: 1, Delta: -5},
		{ProductID: 1, Delta: -5},
	})

	require.Equal(t, ItemApplied, results[0].Outcome)
	require.Equal(t, ItemApplied, results[1].Outcome)
	require.InDelta(t, 10, repo.products[1].Quantity, 0.0001)
}

func TestRefillResetsShelfLife(t *testing.T) {
	p := freshProduct(1, 2)
	p.Status = catalog.StatusLowStock
	repo := newMemoryRepo(p)
	ledger := NewLedger(repo, nil, nil, nil)

	refilled, err := ledger.Refill(context.Background(), 1, 18)
	require.NoError(t, err)
	require.InDelta(t, 20, refilled.Quantity, 0.0001)
	require.Equal(t, catalog.StatusInStock, refilled.Status)
	require.True(t, refilled.CreationDate.After(p.CreationDate))
	wantExpiry, _ := catalog.ExpiryFor(p.Category, refilled.CreationDate)
	require.Equal(t, wantExpiry, refilled.ExpiryDate)
}

func TestRefillRejectsNonPositiveAmount(t *testing.T) {
	ledger := NewLedger(newMemoryRepo(freshProduct(1, 5)), nil, nil, nil)

	_, err := ledger.Refill(context.Background(), 1, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = ledger.Refill(context.Background(), 1, -3)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReserve(t *testing.T) {
	active := freshProduct(1, 10)

	inactive := freshProduct(2, 10)
	inactive.IsActive = false

	expired := freshProduct(3, 10)
	expired.ExpiryDate = time.Now().UTC().Add(-time.Hour)

	repo := newMemoryRepo(active, inactive, expired)
	ledger := NewLedger(repo, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, 1, 10))

	err := ledger.Reserve(ctx, 1, 11)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "insufficient stock")
	require.Contains(t, err.Error(), "available 10, requested 11")

	err = ledger.Reserve(ctx, 2, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "inactive")

	err = ledger.Reserve(ctx, 3, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "expired")

	err = ledger.Reserve(ctx, 99, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Reserve never mutates.
	require.InDelta(t, 10, repo.products[1].Quantity, 0.0001)
	require.Empty(t, repo.movements)
}

// Quantity stays non-negative across arbitrary adjust/refill sequences.
func TestNonNegativityInvariant(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 4))
	ledger := NewLedger(repo, nil, nil, nil)
	ctx := context.Background()

	deltas := []float64{-3, -9, 2, -5, -1, 7, -20}
	for _, d := range deltas {
		_, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: 1, Delta: d, Reason: ReasonManual})
		require.NoError(t, err)
		require.GreaterOrEqual(t, repo.products[1].Quantity, 0.0)
	}
}

type recordingIntegration struct {
	events []AdjustmentPostedEvent
}

func (r *recordingIntegration) HandleStockAdjustmentPosted(ctx context.Context, evt AdjustmentPostedEvent) error {
	r.events = append(r.events, evt)
	return nil
}

func TestAdjustNotifiesIntegration(t *testing.T) {
	repo := newMemoryRepo(freshProduct(1, 6))
	sink := &recordingIntegration{}
	ledger := NewLedger(repo, nil, sink, nil)

	_, err := ledger.Adjust(context.Background(), AdjustmentInput{ProductID: 1, Delta: -3, Reason: ReasonOrder})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	require.Equal(t, catalog.StatusInStock, sink.events[0].OldStatus)
	require.Equal(t, catalog.StatusLowStock, sink.events[0].NewStatus)
	require.InDelta(t, 3, sink.events[0].QuantityAfter, 0.0001)
}

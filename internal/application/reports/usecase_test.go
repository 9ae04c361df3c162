package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-escolar/internal/application/reports"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/demand"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/inmem"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeEnrollment devuelve matrículas fijas por grupo y cuenta llamadas.
type fakeEnrollment struct {
	counts map[string]int64
	err    error
	calls  int
}

func (f *fakeEnrollment) Headcount(ctx context.Context, groupKey string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[groupKey], nil
}

func seedItem(t *testing.T, store *inmem.Store, name, qty, threshold string) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:           uuid.New().String(),
		Name:         name,
		Category:     entity.CategoryConsumable,
		UnitMeasure:  "unidad",
		MinThreshold: dec(threshold),
		VariantShape: entity.VariantScalar,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, inmem.NewItemRepository(store).Create(item))
	if qty != "0" {
		require.NoError(t, inmem.NewStockRepository(store).Upsert(&entity.Stock{
			ItemID: item.ID, Quantity: dec(qty), UpdatedAt: time.Now(),
		}))
	}
	return item
}

func newFixture(store *inmem.Store, provider reports.EnrollmentProvider) *reports.DemandUseCase {
	return reports.NewDemandUseCase(
		inmem.NewItemRepository(store),
		inmem.NewStockRepository(store),
		provider,
	)
}

func TestReconcile(t *testing.T) {
	store := inmem.NewStore()
	item := seedItem(t, store, "Cuaderno", "40", "0")
	provider := &fakeEnrollment{counts: map[string]int64{"grado-3": 50}}
	uc := newFixture(store, provider)

	row, err := uc.Reconcile(context.Background(), item.ID, "grado-3")
	require.NoError(t, err)
	assert.Equal(t, string(demand.StatusDeficit), row.Status)
	assert.True(t, row.Supply.Equal(dec("40")))
	assert.True(t, row.Demand.Equal(dec("50")))
	assert.False(t, row.Suppressed)
	assert.False(t, row.BelowThreshold)
}

func TestReconcileSuppressed(t *testing.T) {
	store := inmem.NewStore()
	item := seedItem(t, store, "Cuaderno", "40", "0")
	provider := &fakeEnrollment{counts: map[string]int64{}}
	uc := newFixture(store, provider)

	// Grupo sin matrículas reportadas: sin estado, marcado como suprimido.
	row, err := uc.Reconcile(context.Background(), item.ID, "grado-9")
	require.NoError(t, err)
	assert.Empty(t, row.Status)
	assert.True(t, row.Suppressed)
}

func TestReconcileBelowThreshold(t *testing.T) {
	store := inmem.NewStore()
	item := seedItem(t, store, "Tiza", "5", "10")
	provider := &fakeEnrollment{counts: map[string]int64{"grado-3": 4}}
	uc := newFixture(store, provider)

	row, err := uc.Reconcile(context.Background(), item.ID, "grado-3")
	require.NoError(t, err)
	assert.Equal(t, string(demand.StatusExcess), row.Status)
	assert.True(t, row.BelowThreshold)
}

func TestReconcileNotFound(t *testing.T) {
	store := inmem.NewStore()
	uc := newFixture(store, &fakeEnrollment{})

	_, err := uc.Reconcile(context.Background(), uuid.New().String(), "grado-3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcileProviderError(t *testing.T) {
	store := inmem.NewStore()
	item := seedItem(t, store, "Cuaderno", "40", "0")
	provider := &fakeEnrollment{err: context.DeadlineExceeded}
	uc := newFixture(store, provider)

	_, err := uc.Reconcile(context.Background(), item.ID, "grado-3")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReconcileAll(t *testing.T) {
	store := inmem.NewStore()
	seedItem(t, store, "Cuaderno", "40", "0")
	seedItem(t, store, "Lápiz", "80", "0")
	seedItem(t, store, "Regla", "50", "0")
	provider := &fakeEnrollment{counts: map[string]int64{"grado-3": 50}}
	uc := newFixture(store, provider)

	report, err := uc.ReconcileAll(context.Background(), "grado-3")
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)

	byName := make(map[string]string, len(report.Rows))
	for _, row := range report.Rows {
		byName[row.ItemName] = row.Status
	}
	assert.Equal(t, string(demand.StatusDeficit), byName["Cuaderno"])
	assert.Equal(t, string(demand.StatusExcess), byName["Lápiz"])
	assert.Equal(t, string(demand.StatusAdequate), byName["Regla"])

	// La demanda se consulta una sola vez por render.
	assert.Equal(t, 1, provider.calls)
}

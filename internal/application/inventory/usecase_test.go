package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-escolar/internal/application/inventory"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/inmem"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/notify"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newFixture arma el caso de uso sobre el almacén en memoria con los artículos
// dados ya en catálogo.
func newFixture(t *testing.T, items ...*entity.Item) (*inventory.StockUseCase, *inmem.Store) {
	t.Helper()
	store := inmem.NewStore()
	itemRepo := inmem.NewItemRepository(store)
	for _, it := range items {
		require.NoError(t, itemRepo.Create(it))
	}
	uc := inventory.NewStockUseCase(
		inmem.NewTxRunner(store),
		itemRepo,
		inmem.NewMovementRepository(store),
		inmem.NewStockRepository(store),
		notify.NewNopNotifier(),
	)
	return uc, store
}

func scalarItem() *entity.Item {
	return &entity.Item{
		ID:           uuid.New().String(),
		Name:         "Resma carta",
		Category:     entity.CategoryConsumable,
		UnitMeasure:  "unidad",
		VariantShape: entity.VariantScalar,
		CreatedAt:    time.Now(),
	}
}

func sizeGridItem() *entity.Item {
	return &entity.Item{
		ID:           uuid.New().String(),
		Name:         "Camisa polo",
		Category:     entity.CategoryUniformPiece,
		UnitMeasure:  "unidad",
		VariantShape: entity.VariantSizeGrid,
		SizeKeys:     []string{"P", "M", "G"},
		CreatedAt:    time.Now(),
	}
}

func TestAdjustEntry(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	qty, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID:    item.ID,
		Direction: entity.MovementEntry,
		Quantity:  dec("50"),
		Requester: "coordinadora",
	})
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("50")))

	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(dec("50")))

	movs, err := uc.ListMovements(ctx, item.ID, "", nil, 10)
	require.NoError(t, err)
	require.Len(t, movs.Movements, 1)
	assert.Equal(t, entity.MovementEntry, movs.Movements[0].Direction)
	assert.Equal(t, "coordinadora", movs.Movements[0].Requester)
}

func TestAdjustExitInsufficientStock(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, Direction: entity.MovementEntry, Quantity: dec("50"), Requester: "a",
	})
	require.NoError(t, err)

	// La salida excede el stock: falla sin tocar proyección ni libro.
	_, err = uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, Direction: entity.MovementExit, Quantity: dec("60"), Requester: "a",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(dec("50")))

	movs, err := uc.ListMovements(ctx, item.ID, "", nil, 10)
	require.NoError(t, err)
	assert.Len(t, movs.Movements, 1)
}

func TestAdjustValidation(t *testing.T) {
	scalar := scalarItem()
	grid := sizeGridItem()
	uc, _ := newFixture(t, scalar, grid)
	ctx := context.Background()

	tests := []struct {
		name string
		in   inventory.AdjustInput
		want error
	}{
		{
			"dirección inválida",
			inventory.AdjustInput{ItemID: scalar.ID, Direction: "TRANSFER", Quantity: dec("1")},
			domain.ErrInvalidInput,
		},
		{
			"cantidad cero",
			inventory.AdjustInput{ItemID: scalar.ID, Direction: entity.MovementEntry, Quantity: decimal.Zero},
			domain.ErrInvalidInput,
		},
		{
			"cantidad negativa",
			inventory.AdjustInput{ItemID: scalar.ID, Direction: entity.MovementEntry, Quantity: dec("-3")},
			domain.ErrInvalidInput,
		},
		{
			"artículo inexistente",
			inventory.AdjustInput{ItemID: uuid.New().String(), Direction: entity.MovementEntry, Quantity: dec("1")},
			domain.ErrNotFound,
		},
		{
			"talla sobre artículo scalar",
			inventory.AdjustInput{ItemID: scalar.ID, SizeKey: "M", Direction: entity.MovementEntry, Quantity: dec("1")},
			domain.ErrInvalidInput,
		},
		{
			"size_grid sin talla",
			inventory.AdjustInput{ItemID: grid.ID, Direction: entity.MovementEntry, Quantity: dec("1")},
			domain.ErrInvalidInput,
		},
		{
			"talla no declarada",
			inventory.AdjustInput{ItemID: grid.ID, SizeKey: "XG", Direction: entity.MovementEntry, Quantity: dec("1")},
			domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Adjust(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSizeBreakdown(t *testing.T) {
	item := sizeGridItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, SizeKey: "M", Direction: entity.MovementEntry, Quantity: dec("10"), Requester: "a",
	})
	require.NoError(t, err)

	// Las tallas sin movimientos reportan 0, no "no encontrada".
	breakdown, err := uc.GetSizeBreakdown(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, breakdown.Sizes["P"].Equal(decimal.Zero))
	assert.True(t, breakdown.Sizes["M"].Equal(dec("10")))
	assert.True(t, breakdown.Sizes["G"].Equal(decimal.Zero))
	assert.True(t, breakdown.Total.Equal(dec("10")))

	// Talla vacía sobre size_grid devuelve el total agregado.
	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(dec("10")))

	// Una talla concreta devuelve su parcial.
	stock, err = uc.GetProjectedStock(ctx, item.ID, "M")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(dec("10")))

	// El desglose no aplica a artículos scalar.
	scalar := scalarItem()
	uc2, _ := newFixture(t, scalar)
	_, err = uc2.GetSizeBreakdown(ctx, scalar.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBulkSeed(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	qty, err := uc.BulkSeed(ctx, inventory.BulkSeedInput{
		ItemID: item.ID, Entries: dec("100"), Exits: dec("40"), Requester: "migración",
	})
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("60")))

	movs, err := uc.ListMovements(ctx, item.ID, "", nil, 10)
	require.NoError(t, err)
	assert.Len(t, movs.Movements, 2)
}

func TestBulkSeedAtomic(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	// Salidas mayores que entradas: la transacción completa se revierte y no
	// queda ni la entrada.
	_, err := uc.BulkSeed(ctx, inventory.BulkSeedInput{
		ItemID: item.ID, Entries: dec("30"), Exits: dec("50"), Requester: "migración",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.IsZero())

	movs, err := uc.ListMovements(ctx, item.ID, "", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, movs.Movements)
}

func TestListMovementsCursor(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.Adjust(ctx, inventory.AdjustInput{
			ItemID: item.ID, Direction: entity.MovementEntry, Quantity: dec("1"), Requester: "a",
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page1, err := uc.ListMovements(ctx, item.ID, "", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Movements, 2)
	require.NotNil(t, page1.NextBefore)
	require.NotEmpty(t, page1.NextBeforeID)

	cursor := &repository.MovementCursor{CreatedAt: *page1.NextBefore, ID: page1.NextBeforeID}
	page2, err := uc.ListMovements(ctx, item.ID, "", cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Movements, 2)

	// Sin solapamiento entre páginas y orden cronológico inverso.
	assert.True(t, page2.Movements[0].CreatedAt.Before(page1.Movements[1].CreatedAt))

	cursor = &repository.MovementCursor{CreatedAt: *page2.NextBefore, ID: page2.NextBeforeID}
	page3, err := uc.ListMovements(ctx, item.ID, "", cursor, 2)
	require.NoError(t, err)
	assert.Len(t, page3.Movements, 1)
	assert.Nil(t, page3.NextBefore)
}

func TestListMovementsCursorEqualTimestamps(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	// La siembra escribe dos movimientos con el mismo timestamp; paginar de a
	// uno debe recorrerlos todos gracias al desempate por id.
	_, err := uc.BulkSeed(ctx, inventory.BulkSeedInput{
		ItemID: item.ID, Entries: dec("50"), Exits: dec("20"), Requester: "migración",
	})
	require.NoError(t, err)

	var seen []string
	var cursor *repository.MovementCursor
	for {
		page, err := uc.ListMovements(ctx, item.ID, "", cursor, 1)
		require.NoError(t, err)
		for _, m := range page.Movements {
			seen = append(seen, m.ID)
		}
		if page.NextBefore == nil {
			break
		}
		cursor = &repository.MovementCursor{CreatedAt: *page.NextBefore, ID: page.NextBeforeID}
	}
	assert.Len(t, seen, 2, "el libro tiene 2 movimientos y el recorrido debe verlos todos")
	assert.NotEqual(t, seen[0], seen[1])
}

func TestAuditProjection(t *testing.T) {
	item := sizeGridItem()
	uc, store := newFixture(t, item)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, SizeKey: "M", Direction: entity.MovementEntry, Quantity: dec("10"), Requester: "a",
	})
	require.NoError(t, err)
	_, err = uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, SizeKey: "M", Direction: entity.MovementExit, Quantity: dec("4"), Requester: "a",
	})
	require.NoError(t, err)

	audit, err := uc.AuditProjection(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
	require.Len(t, audit.Rows, 1)
	assert.True(t, audit.Rows[0].Ledger.Equal(dec("6")))
	assert.False(t, audit.Rows[0].Drift)

	// Auditar dos veces da el mismo resultado: recalcular es función pura del libro.
	again, err := uc.AuditProjection(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, audit, again)

	// Corromper la proyección a mano debe detectarse como deriva.
	stockRepo := inmem.NewStockRepository(store)
	require.NoError(t, stockRepo.Upsert(&entity.Stock{
		ItemID: item.ID, SizeKey: "M", Quantity: dec("99"), UpdatedAt: time.Now(),
	}))
	audit, err = uc.AuditProjection(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, audit.Consistent)
	require.Len(t, audit.Rows, 1)
	assert.True(t, audit.Rows[0].Drift)
	assert.True(t, audit.Rows[0].Projected.Equal(dec("99")))
}

func TestConcurrentFirstEntries(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	// Dos primeras entradas concurrentes sobre una clave sin fila de stock:
	// ninguna puede pisar a la otra, el total debe ser la suma de ambas y la
	// proyección debe coincidir con el libro.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Adjust(ctx, inventory.AdjustInput{
				ItemID: item.ID, Direction: entity.MovementEntry, Quantity: dec("10"), Requester: "a",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.Equal(dec("20")))

	audit, err := uc.AuditProjection(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
}

func TestConcurrentExits(t *testing.T) {
	item := scalarItem()
	uc, _ := newFixture(t, item)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: item.ID, Direction: entity.MovementEntry, Quantity: dec("30"), Requester: "a",
	})
	require.NoError(t, err)

	// Dos salidas concurrentes de 30 contra 30 unidades: exactamente una debe
	// ganar; la otra ve el stock ya agotado.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Adjust(ctx, inventory.AdjustInput{
				ItemID: item.ID, Direction: entity.MovementExit, Quantity: dec("30"), Requester: "b",
			})
		}(i)
	}
	wg.Wait()

	var oks, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			oks++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, insufficient)

	stock, err := uc.GetProjectedStock(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, stock.Quantity.IsZero())
}

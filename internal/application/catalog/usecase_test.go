package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-escolar/internal/application/catalog"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/inmem"
	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/notify"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) (*catalog.ItemUseCase, *inmem.Store) {
	t.Helper()
	store := inmem.NewStore()
	uc := catalog.NewItemUseCase(
		inmem.NewItemRepository(store),
		inmem.NewMovementRepository(store),
		inmem.NewLoanRepository(store),
		notify.NewNopNotifier(),
	)
	return uc, store
}

func TestCreateItem(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	resp, err := uc.Create(ctx, dto.CreateItemRequest{
		Name:         "Cuaderno cuadriculado",
		Category:     entity.CategoryConsumable,
		VariantShape: entity.VariantScalar,
		MinThreshold: dec("20"),
		Attributes:   map[string]string{"grade": "3"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "unidad", resp.UnitMeasure) // default
	assert.True(t, resp.MinThreshold.Equal(dec("20")))

	got, err := uc.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cuaderno cuadriculado", got.Name)
	assert.Equal(t, "3", got.Attributes["grade"])
}

func TestCreateItemValidation(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   dto.CreateItemRequest
	}{
		{"nombre vacío", dto.CreateItemRequest{Category: entity.CategoryKit, VariantShape: entity.VariantScalar}},
		{"categoría desconocida", dto.CreateItemRequest{Name: "x", Category: "toys", VariantShape: entity.VariantScalar}},
		{"forma desconocida", dto.CreateItemRequest{Name: "x", Category: entity.CategoryKit, VariantShape: "matrix"}},
		{"scalar con tallas", dto.CreateItemRequest{Name: "x", Category: entity.CategoryKit, VariantShape: entity.VariantScalar, SizeKeys: []string{"M"}}},
		{"size_grid sin tallas", dto.CreateItemRequest{Name: "x", Category: entity.CategoryUniformPiece, VariantShape: entity.VariantSizeGrid}},
		{"talla vacía", dto.CreateItemRequest{Name: "x", Category: entity.CategoryUniformPiece, VariantShape: entity.VariantSizeGrid, SizeKeys: []string{"M", ""}}},
		{"talla duplicada", dto.CreateItemRequest{Name: "x", Category: entity.CategoryUniformPiece, VariantShape: entity.VariantSizeGrid, SizeKeys: []string{"M", "M"}}},
		{"umbral negativo", dto.CreateItemRequest{Name: "x", Category: entity.CategoryKit, VariantShape: entity.VariantScalar, MinThreshold: dec("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateItemRequest{
		Name: "Balón", Category: entity.CategoryEquipment, VariantShape: entity.VariantScalar,
	})
	require.NoError(t, err)

	name := "Balón de fútbol"
	min := dec("5")
	updated, err := uc.Update(ctx, created.ID, dto.UpdateItemRequest{Name: &name, MinThreshold: &min})
	require.NoError(t, err)
	assert.Equal(t, "Balón de fútbol", updated.Name)
	assert.True(t, updated.MinThreshold.Equal(dec("5")))

	empty := ""
	_, err = uc.Update(ctx, created.ID, dto.UpdateItemRequest{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, uuid.New().String(), dto.UpdateItemRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateThreshold(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateItemRequest{
		Name: "Tiza", Category: entity.CategoryConsumable, VariantShape: entity.VariantScalar,
	})
	require.NoError(t, err)

	require.NoError(t, uc.UpdateThreshold(ctx, created.ID, dec("12")))
	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.MinThreshold.Equal(dec("12")))

	assert.ErrorIs(t, uc.UpdateThreshold(ctx, created.ID, dec("-1")), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.UpdateThreshold(ctx, uuid.New().String(), dec("1")), domain.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateItemRequest{
		Name: "Kit geometría", Category: entity.CategoryKit, VariantShape: entity.VariantScalar,
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteItemWithHistory(t *testing.T) {
	uc, store := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateItemRequest{
		Name: "Kit geometría", Category: entity.CategoryKit, VariantShape: entity.VariantScalar,
	})
	require.NoError(t, err)

	// Un movimiento en el libro bloquea el borrado.
	movRepo := inmem.NewMovementRepository(store)
	require.NoError(t, movRepo.Create(&entity.Movement{
		ID: uuid.New().String(), ItemID: created.ID,
		Direction: entity.MovementEntry, Quantity: dec("1"), CreatedAt: time.Now(),
	}))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrConflict)
}

func TestDeleteItemWithActiveLoan(t *testing.T) {
	uc, store := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateItemRequest{
		Name: "Proyector", Category: entity.CategoryEquipment, VariantShape: entity.VariantScalar,
	})
	require.NoError(t, err)

	loanRepo := inmem.NewLoanRepository(store)
	require.NoError(t, loanRepo.Create(&entity.Loan{
		ID: uuid.New().String(), ItemID: created.ID, Holder: "docente",
		Quantity: dec("1"), Status: entity.LoanRequested, CreatedAt: time.Now(),
	}))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrConflict)
}

func TestListItems(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := uc.Create(ctx, dto.CreateItemRequest{
			Name: name, Category: entity.CategoryConsumable, VariantShape: entity.VariantScalar,
		})
		require.NoError(t, err)
	}

	page, err := uc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page.Limit)

	page, err = uc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// ItemUseCase casos de uso del catálogo de artículos. Las cantidades se manejan
// exclusivamente vía movimientos; aquí solo identidad, forma y metadatos.
type ItemUseCase struct {
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
	loanRepo repository.LoanRepository
	notifier ports.Notifier
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	loanRepo repository.LoanRepository,
	notifier ports.Notifier,
) *ItemUseCase {
	return &ItemUseCase{itemRepo: itemRepo, movRepo: movRepo, loanRepo: loanRepo, notifier: notifier}
}

// Create registra un artículo nuevo con stock proyectado 0.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" || !entity.ValidCategory(in.Category) {
		return nil, domain.ErrInvalidInput
	}
	switch in.VariantShape {
	case entity.VariantScalar:
		if len(in.SizeKeys) > 0 {
			return nil, domain.ErrInvalidInput
		}
	case entity.VariantSizeGrid:
		if len(in.SizeKeys) == 0 {
			return nil, domain.ErrInvalidInput
		}
		seen := make(map[string]bool, len(in.SizeKeys))
		for _, k := range in.SizeKeys {
			if k == "" || seen[k] {
				return nil, domain.ErrInvalidInput
			}
			seen[k] = true
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.MinThreshold.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}

	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		UnitMeasure:  in.UnitMeasure,
		MinThreshold: in.MinThreshold,
		VariantShape: in.VariantShape,
		SizeKeys:     in.SizeKeys,
		Attributes:   in.Attributes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	uc.notifier.Publish(ctx, "item", item.ID, "created")
	return toItemResponse(item), nil
}

// GetByID obtiene un artículo por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.load(id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Update actualiza metadatos (nombre, categoría, umbral, atributos). La forma
// de variante y las tallas son inmutables tras la creación; la cantidad nunca
// se escribe por aquí.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.load(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Name = *in.Name
	}
	if in.Category != nil {
		if !entity.ValidCategory(*in.Category) {
			return nil, domain.ErrInvalidInput
		}
		item.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		item.UnitMeasure = *in.UnitMeasure
	}
	if in.MinThreshold != nil {
		if in.MinThreshold.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.MinThreshold = *in.MinThreshold
	}
	if in.Attributes != nil {
		item.Attributes = *in.Attributes
	}
	item.UpdatedAt = time.Now()
	if err := uc.itemRepo.Update(item); err != nil {
		return nil, err
	}
	uc.notifier.Publish(ctx, "item", item.ID, "updated")
	return toItemResponse(item), nil
}

// UpdateThreshold actualiza solo el umbral de alarma.
func (uc *ItemUseCase) UpdateThreshold(ctx context.Context, id string, min decimal.Decimal) error {
	if min.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if _, err := uc.load(id); err != nil {
		return err
	}
	if err := uc.itemRepo.UpdateThreshold(id, min); err != nil {
		return err
	}
	uc.notifier.Publish(ctx, "item", id, "updated")
	return nil
}

// Delete elimina un artículo solo si ningún movimiento ni préstamo activo lo
// referencia, para preservar la integridad referencial del libro.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.load(id); err != nil {
		return err
	}
	count, err := uc.movRepo.CountByItem(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	active, err := uc.loanRepo.CountActiveByItem(id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrConflict
	}
	if err := uc.itemRepo.Delete(id); err != nil {
		return err
	}
	uc.notifier.Publish(ctx, "item", id, "deleted")
	return nil
}

// List lista artículos con paginación.
func (uc *ItemUseCase) List(ctx context.Context, limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.itemRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *ItemUseCase) load(id string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toItemResponse(item *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		UnitMeasure:  item.UnitMeasure,
		MinThreshold: item.MinThreshold,
		VariantShape: item.VariantShape,
		SizeKeys:     item.SizeKeys,
		Attributes:   item.Attributes,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

package reports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/demand"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// EnrollmentProvider puerto del proveedor externo de matrículas/aulas: entrega
// la cantidad de alumnos para una clave de agrupación (grado, salón). Solo
// lectura, consultado en cada render; el núcleo nunca almacena el valor.
type EnrollmentProvider interface {
	Headcount(ctx context.Context, groupKey string) (int64, error)
}

// DemandUseCase concilia la oferta proyectada contra la demanda externa.
type DemandUseCase struct {
	itemRepo   repository.ItemRepository
	stockRepo  repository.StockRepository
	enrollment EnrollmentProvider
}

// NewDemandUseCase construye el caso de uso.
func NewDemandUseCase(
	itemRepo repository.ItemRepository,
	stockRepo repository.StockRepository,
	enrollment EnrollmentProvider,
) *DemandUseCase {
	return &DemandUseCase{itemRepo: itemRepo, stockRepo: stockRepo, enrollment: enrollment}
}

// Reconcile clasifica un artículo contra la demanda del grupo. Con demanda cero
// o desconocida la clasificación se suprime (Suppressed=true, sin Status).
func (uc *DemandUseCase) Reconcile(ctx context.Context, itemID, groupKey string) (*dto.DemandReconciliationDTO, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	count, err := uc.enrollment.Headcount(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	return uc.reconcileItem(item, groupKey, decimal.NewFromInt(count))
}

// ReconcileAll genera el reporte de conciliación de todo el catálogo para un
// grupo. La demanda se consulta una sola vez por render y no se cachea entre
// renders.
func (uc *DemandUseCase) ReconcileAll(ctx context.Context, groupKey string) (*dto.DemandReportResponse, error) {
	count, err := uc.enrollment.Headcount(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	demandQty := decimal.NewFromInt(count)

	resp := &dto.DemandReportResponse{GroupKey: groupKey}
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		items, err := uc.itemRepo.List(pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			row, err := uc.reconcileItem(item, groupKey, demandQty)
			if err != nil {
				return nil, err
			}
			resp.Rows = append(resp.Rows, *row)
		}
		if len(items) < pageSize {
			break
		}
	}
	return resp, nil
}

func (uc *DemandUseCase) reconcileItem(item *entity.Item, groupKey string, demandQty decimal.Decimal) (*dto.DemandReconciliationDTO, error) {
	supply, err := uc.projectedTotal(item)
	if err != nil {
		return nil, err
	}
	row := &dto.DemandReconciliationDTO{
		ItemID:         item.ID,
		ItemName:       item.Name,
		GroupKey:       groupKey,
		Supply:         supply,
		Demand:         demandQty,
		BelowThreshold: supply.LessThanOrEqual(item.MinThreshold) && item.MinThreshold.GreaterThan(decimal.Zero),
	}
	status, ok := demand.Classify(supply, demandQty)
	if !ok {
		row.Suppressed = true
		return row, nil
	}
	row.Status = string(status)
	return row, nil
}

// projectedTotal suma las filas materializadas del artículo: la cantidad
// escalar, o el agregado sobre tallas para size_grid.
func (uc *DemandUseCase) projectedTotal(item *entity.Item) (decimal.Decimal, error) {
	rows, err := uc.stockRepo.ListByItem(item.ID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range rows {
		total = total.Add(s.Quantity)
	}
	return total, nil
}

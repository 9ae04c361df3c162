package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// maxAdjustRetries reintentos internos ante conflictos transitorios de la BD
// (serialización/deadlock) antes de devolver el conflicto al caller.
const maxAdjustRetries = 3

// StockUseCase es el núcleo del almacén: registra movimientos de inventario de
// forma transaccional y mantiene la proyección de stock consistente con el
// libro. Toda escritura de cantidad pasa por aquí.
type StockUseCase struct {
	txRunner  TxRunner
	itemRepo  repository.ItemRepository
	movRepo   repository.MovementRepository
	stockRepo repository.StockRepository
	notifier  ports.Notifier
}

// NewStockUseCase construye el caso de uso. movRepo y stockRepo se usan solo
// para lecturas fuera de transacción; las escrituras van por txRunner.
func NewStockUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	notifier ports.Notifier,
) *StockUseCase {
	return &StockUseCase{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		movRepo:   movRepo,
		stockRepo: stockRepo,
		notifier:  notifier,
	}
}

// AdjustInput entrada para registrar un ajuste de inventario.
type AdjustInput struct {
	ItemID      string
	SizeKey     string
	Direction   string
	Quantity    decimal.Decimal
	Requester   string
	Observation string
}

// Adjust registra una entrada o salida: en una sola transacción bloquea la fila
// de stock, rechaza salidas que dejarían stock negativo, actualiza la
// proyección e inserta el movimiento. Ante un conflicto transitorio reintenta
// hasta maxAdjustRetries veces y luego devuelve ErrConflict. Devuelve la
// cantidad proyectada resultante.
func (uc *StockUseCase) Adjust(ctx context.Context, in AdjustInput) (decimal.Decimal, error) {
	if in.Direction != entity.MovementEntry && in.Direction != entity.MovementExit {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	item, err := uc.loadItem(in.ItemID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := resolveSizeKey(item, in.SizeKey); err != nil {
		return decimal.Zero, err
	}

	var newQty decimal.Decimal
	now := time.Now()
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.Run(ctx, func(
			movRepo repository.MovementRepository,
			stockRepo repository.StockRepository,
		) error {
			qty, applyErr := ApplyMovement(movRepo, stockRepo, ApplyInput{
				ItemID:      in.ItemID,
				SizeKey:     in.SizeKey,
				Direction:   in.Direction,
				Quantity:    in.Quantity,
				Requester:   in.Requester,
				Observation: in.Observation,
				Now:         now,
			})
			if applyErr != nil {
				return applyErr
			}
			newQty = qty
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < maxAdjustRetries-1 {
			continue
		}
		return decimal.Zero, err
	}

	uc.notifier.Publish(ctx, "item", in.ItemID, "adjusted")
	return newQty, nil
}

// BulkSeedInput saldo inicial histórico de un artículo: entradas acumuladas y
// salidas acumuladas.
type BulkSeedInput struct {
	ItemID    string
	SizeKey   string
	Entries   decimal.Decimal
	Exits     decimal.Decimal
	Requester string
}

// BulkSeed registra el saldo de apertura como dos movimientos en una sola
// transacción: primero la entrada y luego la salida, de modo que el estado
// intermedio nunca es negativo. Si la salida excede la entrada, fallan ambos.
func (uc *StockUseCase) BulkSeed(ctx context.Context, in BulkSeedInput) (decimal.Decimal, error) {
	if !in.Entries.GreaterThan(decimal.Zero) || in.Exits.LessThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	item, err := uc.loadItem(in.ItemID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := resolveSizeKey(item, in.SizeKey); err != nil {
		return decimal.Zero, err
	}

	var newQty decimal.Decimal
	now := time.Now()
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		qty, applyErr := ApplyMovement(movRepo, stockRepo, ApplyInput{
			ItemID:      in.ItemID,
			SizeKey:     in.SizeKey,
			Direction:   entity.MovementEntry,
			Quantity:    in.Entries,
			Requester:   in.Requester,
			Observation: "saldo inicial: entradas",
			Now:         now,
		})
		if applyErr != nil {
			return applyErr
		}
		newQty = qty
		if in.Exits.GreaterThan(decimal.Zero) {
			qty, applyErr = ApplyMovement(movRepo, stockRepo, ApplyInput{
				ItemID:      in.ItemID,
				SizeKey:     in.SizeKey,
				Direction:   entity.MovementExit,
				Quantity:    in.Exits,
				Requester:   in.Requester,
				Observation: "saldo inicial: salidas",
				Now:         now,
			})
			if applyErr != nil {
				return applyErr
			}
			newQty = qty
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	uc.notifier.Publish(ctx, "item", in.ItemID, "seeded")
	return newQty, nil
}

// GetProjectedStock devuelve la cantidad proyectada actual. Para artículos con
// talla, sizeKey vacío devuelve el total agregado (suma sobre tallas, nunca
// almacenado de forma independiente).
func (uc *StockUseCase) GetProjectedStock(ctx context.Context, itemID, sizeKey string) (*dto.StockResponse, error) {
	item, err := uc.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.IsSizeGrid() && sizeKey == "" {
		breakdown, err := uc.GetSizeBreakdown(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return &dto.StockResponse{ItemID: itemID, Quantity: breakdown.Total}, nil
	}
	if err := resolveSizeKey(item, sizeKey); err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.Get(itemID, sizeKey)
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{ItemID: itemID, SizeKey: sizeKey, Quantity: stock.Quantity}, nil
}

// GetSizeBreakdown devuelve el mapa talla→cantidad de un artículo size_grid.
// Una talla sin movimientos reporta 0, no "no encontrada". El total es la suma
// sobre tallas, recalculado en cada lectura.
func (uc *StockUseCase) GetSizeBreakdown(ctx context.Context, itemID string) (*dto.SizeBreakdownResponse, error) {
	item, err := uc.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsSizeGrid() {
		return nil, domain.ErrInvalidInput
	}

	sizes := make(map[string]decimal.Decimal, len(item.SizeKeys))
	for _, k := range item.SizeKeys {
		sizes[k] = decimal.Zero
	}
	rows, err := uc.stockRepo.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, s := range rows {
		// Incluye tallas retiradas del conjunto declarado para no ocultar
		// stock remanente.
		sizes[s.SizeKey] = s.Quantity
	}
	for _, q := range sizes {
		total = total.Add(q)
	}
	return &dto.SizeBreakdownResponse{ItemID: itemID, Sizes: sizes, Total: total}, nil
}

// ListMovements devuelve movimientos en orden (created_at, id) descendente con
// cursor compuesto, de modo que el recorrido es finito y reanudable aunque
// varios movimientos compartan timestamp. sizeKey vacío no filtra.
func (uc *StockUseCase) ListMovements(ctx context.Context, itemID, sizeKey string, cursor *repository.MovementCursor, limit int) (*dto.MovementListResponse, error) {
	item, err := uc.loadItem(itemID)
	if err != nil {
		return nil, err
	}
	if sizeKey != "" {
		if err := resolveSizeKey(item, sizeKey); err != nil {
			return nil, err
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	movs, err := uc.movRepo.ListByItem(itemID, sizeKey, cursor, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementListResponse{Movements: make([]dto.MovementResponse, 0, len(movs))}
	for _, m := range movs {
		resp.Movements = append(resp.Movements, dto.MovementResponse{
			ID:          m.ID,
			ItemID:      m.ItemID,
			SizeKey:     m.SizeKey,
			Direction:   m.Direction,
			Quantity:    m.Quantity,
			Requester:   m.Requester,
			Observation: m.Observation,
			LoanID:      m.LoanID,
			CreatedAt:   m.CreatedAt,
		})
	}
	if len(movs) == limit {
		last := movs[len(movs)-1]
		ts := last.CreatedAt
		resp.NextBefore = &ts
		resp.NextBeforeID = last.ID
	}
	return resp, nil
}

// AuditProjection recalcula la proyección por talla desde el libro completo y
// la compara contra las filas materializadas. El resultado de recalcular es
// función pura del libro: auditarlo dos veces da el mismo valor.
func (uc *StockUseCase) AuditProjection(ctx context.Context, itemID string) (*dto.AuditResponse, error) {
	if _, err := uc.loadItem(itemID); err != nil {
		return nil, err
	}
	sums, err := uc.movRepo.SumByItem(itemID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.stockRepo.ListByItem(itemID)
	if err != nil {
		return nil, err
	}

	projected := make(map[string]decimal.Decimal, len(rows))
	for _, s := range rows {
		projected[s.SizeKey] = s.Quantity
	}
	resp := &dto.AuditResponse{ItemID: itemID, Consistent: true}
	seen := make(map[string]bool, len(sums))
	for _, ks := range sums {
		seen[ks.SizeKey] = true
		proj := projected[ks.SizeKey]
		drift := !proj.Equal(ks.Total)
		if drift {
			resp.Consistent = false
		}
		resp.Rows = append(resp.Rows, dto.AuditRow{
			SizeKey: ks.SizeKey, Ledger: ks.Total, Projected: proj, Drift: drift,
		})
	}
	// Filas materializadas sin respaldo en el libro.
	for key, proj := range projected {
		if seen[key] || proj.IsZero() {
			continue
		}
		resp.Consistent = false
		resp.Rows = append(resp.Rows, dto.AuditRow{
			SizeKey: key, Ledger: decimal.Zero, Projected: proj, Drift: true,
		})
	}
	return resp, nil
}

func (uc *StockUseCase) loadItem(itemID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// resolveSizeKey valida la talla contra la forma de variante del artículo:
// obligatoria y declarada para size_grid, prohibida para scalar.
func resolveSizeKey(item *entity.Item, sizeKey string) error {
	if item.IsSizeGrid() {
		if sizeKey == "" {
			return domain.ErrInvalidInput
		}
		if !item.HasSizeKey(sizeKey) {
			return domain.ErrNotFound
		}
		return nil
	}
	if sizeKey != "" {
		return domain.ErrInvalidInput
	}
	return nil
}

package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	appinventory "github.com/tu-usuario/almacen-escolar/internal/application/inventory"
	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// maxTransitionRetries reintentos ante conflictos transitorios de la BD al
// transicionar un préstamo, igual que en los ajustes de inventario.
const maxTransitionRetries = 3

// LoanUseCase gestiona el ciclo de vida de préstamos de equipo:
// REQUESTED → IN_USE → RETURNED, con rechazo desde los dos primeros estados.
// Si affectsStock está activo, el paso a IN_USE descuenta el stock prestado
// (salida) y el retorno lo restituye (entrada compensatoria), en la misma
// transacción que el cambio de estado.
type LoanUseCase struct {
	txRunner     LoanTxRunner
	itemRepo     repository.ItemRepository
	loanRepo     repository.LoanRepository
	notifier     ports.Notifier
	affectsStock bool
}

// NewLoanUseCase construye el caso de uso. affectsStock viene de configuración
// (LOAN_AFFECTS_STOCK); por defecto los préstamos son solo reserva.
func NewLoanUseCase(
	txRunner LoanTxRunner,
	itemRepo repository.ItemRepository,
	loanRepo repository.LoanRepository,
	notifier ports.Notifier,
	affectsStock bool,
) *LoanUseCase {
	return &LoanUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		loanRepo:     loanRepo,
		notifier:     notifier,
		affectsStock: affectsStock,
	}
}

// Create registra un préstamo en estado REQUESTED. Solo artículos de categoría
// equipment son prestables.
func (uc *LoanUseCase) Create(ctx context.Context, in dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	if in.Holder == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.Category != entity.CategoryEquipment {
		return nil, domain.ErrInvalidInput
	}
	// Un préstamo no porta talla: solo el equipo con cantidad escalar es
	// prestable, para que la política de stock opere sobre la clave vacía.
	if item.IsSizeGrid() {
		return nil, domain.ErrInvalidInput
	}

	loan := &entity.Loan{
		ID:        uuid.New().String(),
		ItemID:    in.ItemID,
		Holder:    in.Holder,
		Purpose:   in.Purpose,
		Quantity:  in.Quantity,
		Status:    entity.LoanRequested,
		CreatedAt: time.Now(),
	}
	if err := uc.loanRepo.Create(loan); err != nil {
		return nil, err
	}
	uc.notifier.Publish(ctx, "loan", loan.ID, "created")
	return toLoanResponse(loan), nil
}

// Transition aplica una arista del autómata sobre el préstamo. La fila del
// préstamo se bloquea (SELECT FOR UPDATE) para serializar transiciones
// concurrentes; una arista ilegal o un estado terminal devuelven
// ErrInvalidTransition sin efecto alguno.
func (uc *LoanUseCase) Transition(ctx context.Context, loanID, target, operator string) (*dto.LoanResponse, error) {
	if !entity.ValidLoanStatus(target) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	for attempt := 0; ; attempt++ {
		err := uc.txRunner.RunLoan(ctx, func(
			loanRepo repository.LoanRepository,
			movRepo repository.MovementRepository,
			stockRepo repository.StockRepository,
		) error {
			loan, err := loanRepo.GetForUpdate(loanID)
			if err != nil {
				return err
			}
			if loan == nil {
				return domain.ErrNotFound
			}
			if !entity.CanLoanTransition(loan.Status, target) {
				return domain.ErrInvalidTransition
			}

			from := loan.Status
			loan.Status = target
			if target == entity.LoanReturned {
				loan.CompletedAt = &now
			}

			if uc.affectsStock {
				if err := uc.applyPolicyMovement(movRepo, stockRepo, loan, from, target, operator, now); err != nil {
					return err
				}
			}
			return loanRepo.Update(loan)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < maxTransitionRetries-1 {
			continue
		}
		return nil, err
	}

	loan, err := uc.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	uc.notifier.Publish(ctx, "loan", loanID, "transitioned")
	return toLoanResponse(loan), nil
}

// applyPolicyMovement emite los movimientos de la política de stock prestado:
// salida al entrar en uso, entrada compensatoria al retornar. El rechazo desde
// IN_USE también restituye, porque la salida ya se aplicó.
func (uc *LoanUseCase) applyPolicyMovement(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	loan *entity.Loan,
	from, target, operator string,
	now time.Time,
) error {
	var direction, obs string
	switch {
	case from == entity.LoanRequested && target == entity.LoanInUse:
		direction = entity.MovementExit
		obs = fmt.Sprintf("préstamo a %s", loan.Holder)
	case from == entity.LoanInUse && (target == entity.LoanReturned || target == entity.LoanRejected):
		direction = entity.MovementEntry
		obs = fmt.Sprintf("devolución de %s", loan.Holder)
	default:
		return nil
	}
	_, err := appinventory.ApplyMovement(movRepo, stockRepo, appinventory.ApplyInput{
		ItemID:      loan.ItemID,
		Direction:   direction,
		Quantity:    loan.Quantity,
		Requester:   operator,
		Observation: obs,
		LoanID:      loan.ID,
		Now:         now,
	})
	return err
}

// GetByID obtiene un préstamo por ID.
func (uc *LoanUseCase) GetByID(ctx context.Context, id string) (*dto.LoanResponse, error) {
	loan, err := uc.loanRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrNotFound
	}
	return toLoanResponse(loan), nil
}

// ListByItem lista préstamos de un artículo con paginación.
func (uc *LoanUseCase) ListByItem(ctx context.Context, itemID string, limit, offset int) (*dto.LoanListResponse, error) {
	list, err := uc.loanRepo.ListByItem(itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toLoanList(list, limit, offset), nil
}

// ListByStatus lista préstamos por estado con paginación.
func (uc *LoanUseCase) ListByStatus(ctx context.Context, status string, limit, offset int) (*dto.LoanListResponse, error) {
	if !entity.ValidLoanStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.loanRepo.ListByStatus(status, limit, offset)
	if err != nil {
		return nil, err
	}
	return toLoanList(list, limit, offset), nil
}

func toLoanList(list []*entity.Loan, limit, offset int) *dto.LoanListResponse {
	loans := make([]dto.LoanResponse, 0, len(list))
	for _, l := range list {
		loans = append(loans, *toLoanResponse(l))
	}
	return &dto.LoanListResponse{
		Loans: loans,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}

func toLoanResponse(loan *entity.Loan) *dto.LoanResponse {
	return &dto.LoanResponse{
		ID:          loan.ID,
		ItemID:      loan.ItemID,
		Holder:      loan.Holder,
		Purpose:     loan.Purpose,
		Quantity:    loan.Quantity,
		Status:      loan.Status,
		CreatedAt:   loan.CreatedAt,
		CompletedAt: loan.CompletedAt,
	}
}

// Package inmem implementa los puertos de persistencia sobre mapas en memoria,
// con transacciones por copia (snapshot + commit). Lo usan las pruebas de
// casos de uso; el comportamiento replica el contrato de los repositorios de
// postgres: stock ausente se lee como cero, el libro es append-only y las
// transacciones son todo-o-nada.
package inmem

import (
	"context"
	"sync"

	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// state contiene los datos vivos del almacén. Las transacciones trabajan sobre
// un clon y lo promueven al confirmar.
type state struct {
	items     map[string]*entity.Item
	itemOrder []string
	stocks    map[string]*entity.Stock
	movements []*entity.Movement
	loans     map[string]*entity.Loan
	loanOrder []string
}

func newState() *state {
	return &state{
		items:  make(map[string]*entity.Item),
		stocks: make(map[string]*entity.Stock),
		loans:  make(map[string]*entity.Loan),
	}
}

// clone copia lo que una transacción puede mutar: stock, libro y préstamos.
// El catálogo se comparte porque ninguna transacción lo escribe.
func (st *state) clone() *state {
	c := &state{
		items:     st.items,
		itemOrder: st.itemOrder,
		stocks:    make(map[string]*entity.Stock, len(st.stocks)),
		movements: append([]*entity.Movement(nil), st.movements...),
		loans:     make(map[string]*entity.Loan, len(st.loans)),
		loanOrder: append([]string(nil), st.loanOrder...),
	}
	for k, v := range st.stocks {
		cp := *v
		c.stocks[k] = &cp
	}
	for k, v := range st.loans {
		cp := *v
		c.loans[k] = &cp
	}
	return c
}

func stockKey(itemID, sizeKey string) string { return itemID + "|" + sizeKey }

// Store agrupa el estado compartido y su candado. Todas las vistas de
// repositorio y el TxRunner operan sobre el mismo Store.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// TxRunner ejecuta funciones transaccionales sobre el Store. El candado del
// Store serializa las transacciones, igual que SELECT FOR UPDATE serializa los
// ajustes concurrentes sobre la misma fila en postgres.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el ejecutor transaccional del Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn sobre un clon del estado y lo confirma solo si fn no falla.
func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	stage := t.s.st.clone()
	if err := fn(movementView{stage}, stockView{stage}); err != nil {
		return err
	}
	t.s.st = stage
	return nil
}

// RunLoan ejecuta fn con la vista de préstamos además de las de inventario.
func (t *TxRunner) RunLoan(ctx context.Context, fn func(
	loanRepo repository.LoanRepository,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	stage := t.s.st.clone()
	if err := fn(loanView{stage}, movementView{stage}, stockView{stage}); err != nil {
		return err
	}
	t.s.st = stage
	return nil
}

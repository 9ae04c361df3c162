package inmem

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// Las vistas operan sobre un *state sin candado: dentro de una transacción el
// TxRunner ya sostiene el candado del Store, y los repositorios públicos lo
// toman por operación.

type itemView struct{ st *state }

func (v itemView) Create(item *entity.Item) error {
	if _, ok := v.st.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	v.st.items[item.ID] = &cp
	v.st.itemOrder = append(v.st.itemOrder, item.ID)
	return nil
}

func (v itemView) GetByID(id string) (*entity.Item, error) {
	item, ok := v.st.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (v itemView) Update(item *entity.Item) error {
	if _, ok := v.st.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	v.st.items[item.ID] = &cp
	return nil
}

func (v itemView) UpdateThreshold(id string, min decimal.Decimal) error {
	item, ok := v.st.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.MinThreshold = min
	item.UpdatedAt = time.Now()
	return nil
}

func (v itemView) List(limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for i := offset; i < len(v.st.itemOrder) && len(out) < limit; i++ {
		cp := *v.st.items[v.st.itemOrder[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (v itemView) Delete(id string) error {
	if _, ok := v.st.items[id]; !ok {
		return domain.ErrNotFound
	}
	// Réplica de la restricción de clave foránea de postgres.
	for _, m := range v.st.movements {
		if m.ItemID == id {
			return domain.ErrConflict
		}
	}
	for _, l := range v.st.loans {
		if l.ItemID == id {
			return domain.ErrConflict
		}
	}
	delete(v.st.items, id)
	for i, oid := range v.st.itemOrder {
		if oid == id {
			v.st.itemOrder = append(v.st.itemOrder[:i], v.st.itemOrder[i+1:]...)
			break
		}
	}
	return nil
}

type movementView struct{ st *state }

func (v movementView) Create(movement *entity.Movement) error {
	cp := *movement
	v.st.movements = append(v.st.movements, &cp)
	return nil
}

// ListByItem reproduce el ORDER BY (created_at, id) DESC y la comparación de
// cursor por fila del repositorio de postgres.
func (v movementView) ListByItem(itemID, sizeKey string, cursor *repository.MovementCursor, limit int) ([]*entity.Movement, error) {
	var matched []*entity.Movement
	for _, m := range v.st.movements {
		if m.ItemID != itemID {
			continue
		}
		if sizeKey != "" && m.SizeKey != sizeKey {
			continue
		}
		if cursor != nil && !beforeCursor(m, cursor) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*entity.Movement, 0, len(matched))
	for _, m := range matched {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// beforeCursor indica si (m.CreatedAt, m.ID) < (c.CreatedAt, c.ID).
func beforeCursor(m *entity.Movement, c *repository.MovementCursor) bool {
	if m.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return m.CreatedAt.Equal(c.CreatedAt) && m.ID < c.ID
}

func (v movementView) SumByItem(itemID string) ([]repository.KeySum, error) {
	totals := make(map[string]decimal.Decimal)
	for _, m := range v.st.movements {
		if m.ItemID != itemID {
			continue
		}
		totals[m.SizeKey] = totals[m.SizeKey].Add(m.Signed())
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]repository.KeySum, 0, len(keys))
	for _, k := range keys {
		out = append(out, repository.KeySum{SizeKey: k, Total: totals[k]})
	}
	return out, nil
}

func (v movementView) CountByItem(itemID string) (int64, error) {
	var n int64
	for _, m := range v.st.movements {
		if m.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

type stockView struct{ st *state }

// Get devuelve fila cero cuando no existe, igual que el repositorio de
// postgres: un artículo sin movimientos tiene stock 0, no "no encontrado".
func (v stockView) Get(itemID, sizeKey string) (*entity.Stock, error) {
	if s, ok := v.st.stocks[stockKey(itemID, sizeKey)]; ok {
		cp := *s
		return &cp, nil
	}
	return &entity.Stock{ItemID: itemID, SizeKey: sizeKey, Quantity: decimal.Zero}, nil
}

// GetForUpdate materializa la fila en cero si no existe, igual que el
// repositorio de postgres: el bloqueo necesita una fila concreta que tomar.
func (v stockView) GetForUpdate(itemID, sizeKey string) (*entity.Stock, error) {
	key := stockKey(itemID, sizeKey)
	if _, ok := v.st.stocks[key]; !ok {
		v.st.stocks[key] = &entity.Stock{
			ItemID: itemID, SizeKey: sizeKey, Quantity: decimal.Zero, UpdatedAt: time.Now(),
		}
	}
	cp := *v.st.stocks[key]
	return &cp, nil
}

func (v stockView) Upsert(stock *entity.Stock) error {
	cp := *stock
	v.st.stocks[stockKey(stock.ItemID, stock.SizeKey)] = &cp
	return nil
}

func (v stockView) ListByItem(itemID string) ([]*entity.Stock, error) {
	var keys []string
	for k, s := range v.st.stocks {
		if s.ItemID == itemID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*entity.Stock, 0, len(keys))
	for _, k := range keys {
		cp := *v.st.stocks[k]
		out = append(out, &cp)
	}
	return out, nil
}

type loanView struct{ st *state }

func (v loanView) Create(loan *entity.Loan) error {
	if _, ok := v.st.loans[loan.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *loan
	v.st.loans[loan.ID] = &cp
	v.st.loanOrder = append(v.st.loanOrder, loan.ID)
	return nil
}

func (v loanView) GetByID(id string) (*entity.Loan, error) {
	loan, ok := v.st.loans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *loan
	return &cp, nil
}

func (v loanView) GetForUpdate(id string) (*entity.Loan, error) {
	return v.GetByID(id)
}

func (v loanView) Update(loan *entity.Loan) error {
	if _, ok := v.st.loans[loan.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *loan
	v.st.loans[loan.ID] = &cp
	return nil
}

func (v loanView) ListByItem(itemID string, limit, offset int) ([]*entity.Loan, error) {
	return v.list(func(l *entity.Loan) bool { return l.ItemID == itemID }, limit, offset)
}

func (v loanView) ListByStatus(status string, limit, offset int) ([]*entity.Loan, error) {
	return v.list(func(l *entity.Loan) bool { return l.Status == status }, limit, offset)
}

func (v loanView) list(match func(*entity.Loan) bool, limit, offset int) ([]*entity.Loan, error) {
	var out []*entity.Loan
	skip := offset
	for i := len(v.st.loanOrder) - 1; i >= 0 && len(out) < limit; i-- {
		l := v.st.loans[v.st.loanOrder[i]]
		if !match(l) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (v loanView) CountActiveByItem(itemID string) (int64, error) {
	var n int64
	for _, l := range v.st.loans {
		if l.ItemID == itemID && !entity.LoanTerminal(l.Status) {
			n++
		}
	}
	return n, nil
}

// Repositorios públicos: misma lógica que las vistas, tomando el candado del
// Store por operación.

type ItemRepository struct{ s *Store }

// NewItemRepository construye la vista pública del catálogo.
func NewItemRepository(s *Store) *ItemRepository { return &ItemRepository{s: s} }

func (r *ItemRepository) Create(item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.Create(item)
}

func (r *ItemRepository) GetByID(id string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.GetByID(id)
}

func (r *ItemRepository) Update(item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.Update(item)
}

func (r *ItemRepository) UpdateThreshold(id string, min decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.UpdateThreshold(id, min)
}

func (r *ItemRepository) List(limit, offset int) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.List(limit, offset)
}

func (r *ItemRepository) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return itemView{r.s.st}.Delete(id)
}

type MovementRepository struct{ s *Store }

// NewMovementRepository construye la vista pública del libro de movimientos.
func NewMovementRepository(s *Store) *MovementRepository { return &MovementRepository{s: s} }

func (r *MovementRepository) Create(movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return movementView{r.s.st}.Create(movement)
}

func (r *MovementRepository) ListByItem(itemID, sizeKey string, cursor *repository.MovementCursor, limit int) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return movementView{r.s.st}.ListByItem(itemID, sizeKey, cursor, limit)
}

func (r *MovementRepository) SumByItem(itemID string) ([]repository.KeySum, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return movementView{r.s.st}.SumByItem(itemID)
}

func (r *MovementRepository) CountByItem(itemID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return movementView{r.s.st}.CountByItem(itemID)
}

type StockRepository struct{ s *Store }

// NewStockRepository construye la vista pública de la proyección de stock.
func NewStockRepository(s *Store) *StockRepository { return &StockRepository{s: s} }

func (r *StockRepository) Get(itemID, sizeKey string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockView{r.s.st}.Get(itemID, sizeKey)
}

func (r *StockRepository) GetForUpdate(itemID, sizeKey string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockView{r.s.st}.GetForUpdate(itemID, sizeKey)
}

func (r *StockRepository) Upsert(stock *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockView{r.s.st}.Upsert(stock)
}

func (r *StockRepository) ListByItem(itemID string) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return stockView{r.s.st}.ListByItem(itemID)
}

type LoanRepository struct{ s *Store }

// NewLoanRepository construye la vista pública de préstamos.
func NewLoanRepository(s *Store) *LoanRepository { return &LoanRepository{s: s} }

func (r *LoanRepository) Create(loan *entity.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.Create(loan)
}

func (r *LoanRepository) GetByID(id string) (*entity.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.GetByID(id)
}

func (r *LoanRepository) GetForUpdate(id string) (*entity.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.GetForUpdate(id)
}

func (r *LoanRepository) Update(loan *entity.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.Update(loan)
}

func (r *LoanRepository) ListByItem(itemID string, limit, offset int) ([]*entity.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.ListByItem(itemID, limit, offset)
}

func (r *LoanRepository) ListByStatus(status string, limit, offset int) ([]*entity.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.ListByStatus(status, limit, offset)
}

func (r *LoanRepository) CountActiveByItem(itemID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return loanView{r.s.st}.CountActiveByItem(itemID)
}

// Verificaciones de interfaz.
var (
	_ repository.ItemRepository     = (*ItemRepository)(nil)
	_ repository.MovementRepository = (*MovementRepository)(nil)
	_ repository.StockRepository    = (*StockRepository)(nil)
	_ repository.LoanRepository     = (*LoanRepository)(nil)
)

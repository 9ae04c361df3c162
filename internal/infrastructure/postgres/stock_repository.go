package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx). Clave compuesta (item_id, size_key); size_key vacío para scalar.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la fila de stock; una clave sin movimientos reporta cantidad 0.
func (r *StockRepo) Get(itemID, sizeKey string) (*entity.Stock, error) {
	query := `
		SELECT item_id, size_key, quantity, updated_at
		FROM stock WHERE item_id = $1 AND size_key = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, itemID, sizeKey).Scan(
		&s.ItemID, &s.SizeKey, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ItemID: itemID, SizeKey: sizeKey, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate materializa la fila en cero si no existe y la bloquea
// (SELECT FOR UPDATE). Un FOR UPDATE sobre una fila inexistente no toma ningún
// candado, y dos primeras escrituras concurrentes sobre la misma clave se
// pisarían; el INSERT ... DO NOTHING garantiza que siempre hay fila que bloquear.
func (r *StockRepo) GetForUpdate(itemID, sizeKey string) (*entity.Stock, error) {
	seed := `
		INSERT INTO stock (item_id, size_key, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (item_id, size_key) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), seed, itemID, sizeKey); err != nil {
		return nil, fmt.Errorf("seed stock row: %w", err)
	}
	query := `
		SELECT item_id, size_key, quantity, updated_at
		FROM stock WHERE item_id = $1 AND size_key = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, itemID, sizeKey).Scan(
		&s.ItemID, &s.SizeKey, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad proyectada para (item_id, size_key).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (item_id, size_key, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id, size_key)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, stock.ItemID, stock.SizeKey, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByItem devuelve todas las filas materializadas del artículo.
func (r *StockRepo) ListByItem(itemID string) ([]*entity.Stock, error) {
	query := `
		SELECT item_id, size_key, quantity, updated_at
		FROM stock WHERE item_id = $1
		ORDER BY size_key`
	rows, err := r.q.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ItemID, &s.SizeKey, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

package repository

import "github.com/tu-usuario/almacen-escolar/internal/domain/entity"

// StockRepository define el puerto de la proyección materializada de stock por
// artículo+talla. Usado dentro de transacciones para garantizar consistencia
// con el libro de movimientos.
type StockRepository interface {
	Get(itemID, sizeKey string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(itemID, sizeKey string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// ListByItem devuelve las filas materializadas del artículo (todas las tallas).
	ListByItem(itemID string) ([]*entity.Stock, error)
}

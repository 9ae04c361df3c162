package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	Update(item *entity.Item) error
	UpdateThreshold(id string, min decimal.Decimal) error
	List(limit, offset int) ([]*entity.Item, error)
	Delete(id string) error
}

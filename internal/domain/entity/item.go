package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de artículo del almacén escolar.
const (
	CategoryConsumable     = "consumable"
	CategoryKit            = "kit"
	CategoryUniformPiece   = "uniform_piece"
	CategoryFootwear       = "footwear"
	CategoryEquipment      = "equipment"
	CategoryCurriculumBook = "curriculum_book"
)

// Formas de variante: cantidad única o partición por talla.
const (
	VariantScalar   = "scalar"
	VariantSizeGrid = "size_grid"
)

// Item representa un artículo almacenable del catálogo. La cantidad actual nunca
// se escribe aquí; vive en Stock y se deriva del libro de movimientos.
// Attributes guarda metadatos estructurados por categoría (grado, bimestre, etc.).
type Item struct {
	ID           string
	Name         string
	Category     string
	UnitMeasure  string
	MinThreshold decimal.Decimal // umbral mínimo para alarma de reposición
	VariantShape string          // scalar | size_grid
	SizeKeys     []string        // tallas declaradas; vacío si scalar
	Attributes   map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidCategory indica si la categoría pertenece al conjunto enumerado.
func ValidCategory(c string) bool {
	switch c {
	case CategoryConsumable, CategoryKit, CategoryUniformPiece,
		CategoryFootwear, CategoryEquipment, CategoryCurriculumBook:
		return true
	}
	return false
}

// IsSizeGrid indica si el artículo particiona su stock por talla.
func (i *Item) IsSizeGrid() bool {
	return i.VariantShape == VariantSizeGrid
}

// HasSizeKey verifica que la talla pertenezca al conjunto declarado del artículo.
func (i *Item) HasSizeKey(key string) bool {
	for _, k := range i.SizeKeys {
		if k == key {
			return true
		}
	}
	return false
}

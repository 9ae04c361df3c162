package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name         string            `json:"name" validate:"required"`
	Category     string            `json:"category" validate:"required"`
	UnitMeasure  string            `json:"unit_measure"`
	MinThreshold decimal.Decimal   `json:"min_threshold" validate:"omitempty,min=0"`
	VariantShape string            `json:"variant_shape" validate:"required,oneof=scalar size_grid"`
	SizeKeys     []string          `json:"size_keys,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id. Solo metadatos; nunca cantidades.
type UpdateItemRequest struct {
	Name         *string            `json:"name,omitempty"`
	Category     *string            `json:"category,omitempty"`
	UnitMeasure  *string            `json:"unit_measure,omitempty"`
	MinThreshold *decimal.Decimal   `json:"min_threshold,omitempty" validate:"omitempty,min=0"`
	Attributes   *map[string]string `json:"attributes,omitempty"`
}

// UpdateThresholdRequest body para PATCH /api/items/:id/threshold.
type UpdateThresholdRequest struct {
	MinThreshold decimal.Decimal `json:"min_threshold" validate:"min=0"`
}

// ItemResponse representación de un artículo en respuestas.
type ItemResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	UnitMeasure  string            `json:"unit_measure"`
	MinThreshold decimal.Decimal   `json:"min_threshold"`
	VariantShape string            `json:"variant_shape"`
	SizeKeys     []string          `json:"size_keys,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ItemListResponse listado paginado de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

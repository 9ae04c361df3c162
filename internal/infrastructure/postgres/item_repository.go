package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable
// con pool o tx). SizeKeys se guarda como text[]; Attributes como JSONB.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para artículos.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = "id, name, category, unit_measure, min_threshold, variant_shape, size_keys, attributes, created_at, updated_at"

// Create persiste un artículo nuevo.
func (r *ItemRepo) Create(item *entity.Item) error {
	attrs, err := encodeAttributes(item.Attributes)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO items (id, name, category, unit_measure, min_threshold, variant_shape, size_keys, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Category, item.UnitMeasure, item.MinThreshold,
		item.VariantShape, item.SizeKeys, attrs, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID. Devuelve nil sin error si no existe.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE id = $1"
	item, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update actualiza los metadatos del artículo. Forma de variante y tallas son
// inmutables; no aparecen en el SET.
func (r *ItemRepo) Update(item *entity.Item) error {
	attrs, err := encodeAttributes(item.Attributes)
	if err != nil {
		return err
	}
	query := `
		UPDATE items
		SET name = $2, category = $3, unit_measure = $4, min_threshold = $5, attributes = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Category, item.UnitMeasure, item.MinThreshold,
		attrs, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateThreshold actualiza solo el umbral de alarma.
func (r *ItemRepo) UpdateThreshold(id string, min decimal.Decimal) error {
	query := `UPDATE items SET min_threshold = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, min)
	if err != nil {
		return fmt.Errorf("update threshold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista artículos por nombre con paginación.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := "SELECT " + itemColumns + " FROM items ORDER BY name LIMIT $1 OFFSET $2"
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Delete elimina el artículo. La guarda referencial (sin movimientos ni
// préstamos) la aplica el caso de uso; una FK violada se reporta como conflicto.
func (r *ItemRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var attrs []byte
	if err := row.Scan(
		&it.ID, &it.Name, &it.Category, &it.UnitMeasure, &it.MinThreshold,
		&it.VariantShape, &it.SizeKeys, &attrs, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &it.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return &it, nil
}

func encodeAttributes(attrs map[string]string) ([]byte, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return data, nil
}

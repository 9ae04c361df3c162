package ports

import "context"

// Notifier publica eventos de cambio para que la capa de presentación refresque
// sus vistas tras una mutación exitosa. Best-effort: las implementaciones no
// deben fallar la petición por un error de publicación.
type Notifier interface {
	Publish(ctx context.Context, entity, id, action string)
}

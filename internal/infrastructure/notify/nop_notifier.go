package notify

import (
	"context"

	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
)

var _ ports.Notifier = (*NopNotifier)(nil)

// NopNotifier descarta todos los eventos. Se usa cuando no hay Redis
// configurado y en tests.
type NopNotifier struct{}

// NewNopNotifier construye el notificador nulo.
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

// Publish no hace nada.
func (n *NopNotifier) Publish(ctx context.Context, entity, id, action string) {}

package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/tu-usuario/almacen-escolar/internal/application/ports"
)

var _ ports.Notifier = (*RedisNotifier)(nil)

// changeEvent envelope publicado en el canal de cambios.
type changeEvent struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

// RedisNotifier publica eventos de cambio por Redis pub/sub para que la capa de
// presentación refresque sus vistas. Best-effort: un fallo de publicación se
// registra y no afecta la petición.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier construye el notificador sobre un cliente Redis.
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// Publish publica el evento en el canal configurado.
func (n *RedisNotifier) Publish(ctx context.Context, entity, id, action string) {
	data, err := json.Marshal(changeEvent{Entity: entity, ID: id, Action: action})
	if err != nil {
		log.Error().Err(err).Msg("serializar evento de cambio")
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		log.Warn().Err(err).Str("entity", entity).Str("id", id).Msg("publicar evento de cambio")
	}
}

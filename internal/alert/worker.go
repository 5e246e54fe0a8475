package alert

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Worker consome movimentos notáveis do Kafka, guarda o último movimento
// por evento no Redis e emite o alerta em log estruturado.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Worker struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Redis  *redis.Client
	TTL    time.Duration

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase
}

func lastMovementKey(eventID string) string { return "movement:last:" + eventID }

// Run inicia o loop principal de consumo. Entrega pelo menos uma vez:
// mensagens repetidas apenas sobrescrevem a mesma chave no Redis.
func (w *Worker) Run(ctx context.Context) error {
	for {
		m, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if w.OnConsumed != nil {
			w.OnConsumed()
		}

		var move odds.MovementEvent
		if err := json.Unmarshal(m.Value, &move); err != nil {
			w.Log.Warn("invalid movement message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			continue
		}

		// Guarda o último movimento do evento no Redis
		if err := w.Redis.Set(ctx, lastMovementKey(move.EventID), m.Value, w.TTL).Err(); err != nil {
			w.Log.Warn("redis set failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("cache")
			}
			// segue para o alerta mesmo com falha de cache
		} else if w.OnCached != nil {
			w.OnCached()
		}

		w.Log.Info("notable line movement",
			zap.String("league", move.LeagueKey),
			zap.String("event_id", move.EventID),
			zap.String("market", move.Details.Market),
			zap.String("book", move.Details.Book),
			zap.String("outcome", move.Details.Outcome),
			zap.Int("previous_price", move.Details.Previous.Price),
			zap.Int("current_price", move.Details.Current.Price),
			zap.Int("delta", move.Details.Delta),
		)
	}
}

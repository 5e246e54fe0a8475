package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/betboard/internal/shared/kafka"
	"github.com/radieske/betboard/pkg/contracts/odds"
	"github.com/radieske/betboard/pkg/contracts/topics"
)

// MovementPublisher publica movimentos notáveis no tópico movement_events.
// Entrega pelo menos uma vez; consumidores precisam tolerar duplicatas.
type MovementPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewMovementPublisher cria o publisher sobre os brokers configurados.
func NewMovementPublisher(brokers string, log *zap.Logger) *MovementPublisher {
	return &MovementPublisher{
		writer: sharedkafka.NewWriter(brokers, topics.MovementEvents),
		log:    log,
	}
}

// PublishMovements envia um lote de movimentos. A chave da mensagem é o
// event_id, mantendo movimentos do mesmo evento na mesma partição.
func (p *MovementPublisher) PublishMovements(ctx context.Context, moves []odds.MovementEvent) error {
	if len(moves) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(moves))
	for _, move := range moves {
		value, err := json.Marshal(move)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(move.EventID),
			Value: value,
			Time:  time.Now(),
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("failed to publish movements", zap.Error(err))
		return err
	}

	p.log.Debug("published movements", zap.Int("count", len(moves)))
	return nil
}

// Close finaliza o writer.
func (p *MovementPublisher) Close() error {
	return p.writer.Close()
}

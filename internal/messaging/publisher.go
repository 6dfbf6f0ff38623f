package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codegen-server/internal/domain"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	// ExchangeGenerationEvents - имя exchange для событий жизненного цикла генераций.
	ExchangeGenerationEvents = "generation_events"
)

// GenerationEvent - событие перехода записи генерации в терминальное состояние.
type GenerationEvent struct {
	RecordID   uuid.UUID     `json:"recordId"`
	UserID     uuid.UUID     `json:"userId"`
	Status     domain.Status `json:"status"`
	Stack      domain.Stack  `json:"stack"`
	OutputMode string        `json:"outputMode"`
	Error      string        `json:"error,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// EventPublisher публикует события жизненного цикла генераций.
type EventPublisher interface {
	PublishGenerationEvent(ctx context.Context, event GenerationEvent) error
	Close() error
}

// RabbitMQEventPublisher реализует EventPublisher поверх RabbitMQ.
type RabbitMQEventPublisher struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// NewRabbitMQEventPublisher создает нового издателя событий генерации.
// Предполагается, что соединение conn уже установлено; переподключениями
// управляет внешний код.
func NewRabbitMQEventPublisher(conn *amqp091.Connection) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Durable fanout exchange, переживает перезапуск брокера.
	err = ch.ExchangeDeclare(
		ExchangeGenerationEvents, // name
		"fanout",                 // type
		true,                     // durable
		false,                    // auto-deleted
		false,                    // internal
		false,                    // no-wait
		nil,                      // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("exchange", ExchangeGenerationEvents).Msg("Failed to declare exchange")
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", ExchangeGenerationEvents, err)
	}

	log.Info().Str("exchange", ExchangeGenerationEvents).Msg("Generation events exchange declared successfully")

	return &RabbitMQEventPublisher{conn: conn, ch: ch}, nil
}

// PublishGenerationEvent публикует событие терминального перехода в RabbitMQ.
func (p *RabbitMQEventPublisher) PublishGenerationEvent(ctx context.Context, event GenerationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Interface("event", event).Msg("Failed to marshal generation event")
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeGenerationEvents, // exchange
		"",                       // routing key (не используется для fanout)
		false,                    // mandatory
		false,                    // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
			MessageId:   uuid.NewString(),
		},
	)
	if err != nil {
		log.Error().Err(err).Interface("event", event).Msg("Failed to publish generation event")
		return fmt.Errorf("failed to publish generation event: %w", err)
	}

	log.Debug().Str("record_id", event.RecordID.String()).Str("status", string(event.Status)).Msg("Generation event published")
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

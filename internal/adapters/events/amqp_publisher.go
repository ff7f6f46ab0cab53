package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/platform/metrics"
	"github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher sends ledger events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
	channel  *amqp091.Channel
	exchange string
	metrics  metrics.Recorder
}

var _ portssvc.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string, recorder metrics.Recorder) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if recorder == nil {
		recorder = metrics.NoOpRecorder{}
	}
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, metrics: recorder}, nil
}

// Publish sends event as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	p.mu.Unlock()

	p.metrics.RecordEventPublished(string(event.Type), err == nil)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "Published ledger event", "event_type", event.Type, "entity_id", event.EntityID, "exchange", p.exchange)
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

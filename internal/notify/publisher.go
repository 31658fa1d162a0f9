package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

// Publisher pushes an appointment event to an external consumer
type Publisher interface {
	Publish(ctx context.Context, event *models.AppointmentEvent) error
	Close() error
}

// AMQPPublisher publishes appointment events to a RabbitMQ queue. Publishes
// run through a circuit breaker so a dead broker fails fast instead of
// stalling every sweep.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	breaker *gobreaker.CircuitBreaker
}

// NewAMQPPublisher connects to RabbitMQ and declares the event queue
func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "amqp-publisher",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return &AMQPPublisher{
		conn:    conn,
		channel: channel,
		queue:   queueName,
		breaker: breaker,
	}, nil
}

// Publish sends the event as a persistent JSON message
func (p *AMQPPublisher) Publish(ctx context.Context, event *models.AppointmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %d: %w", event.ID, err)
	}

	return nil
}

// Close shuts down the channel and connection
func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

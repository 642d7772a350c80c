package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StatusEventsExchange is the topic exchange other terminals bind to
const StatusEventsExchange = "pos.events"

// StatusEvent announces that an order reached a new lifecycle status
type StatusEvent struct {
	OrderID uint      `json:"order_id"`
	Status  string    `json:"status"`
	Action  string    `json:"action"`
	At      time.Time `json:"at"`
}

// RoutingKey is "order.status.<status>" in lower case
func (e StatusEvent) RoutingKey() string {
	return "order.status." + strings.ToLower(e.Status)
}

// StatusPublisher broadcasts status changes so other dashboards re-fetch
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChange(context.Context, StatusEvent) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }

// RabbitPublisher publishes status events to a RabbitMQ topic exchange
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
}

// NewRabbitPublisher dials the broker and declares the events exchange
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	if err := ch.ExchangeDeclare(StatusEventsExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", StatusEventsExchange, err)
	}

	log.Printf("Publishing order status events to exchange %s", StatusEventsExchange)
	return &RabbitPublisher{conn: conn, ch: ch, exchange: StatusEventsExchange}, nil
}

// PublishStatusChange sends the event as a persistent JSON message
func (p *RabbitPublisher) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}
	return nil
}

// Close releases the channel and connection
func (p *RabbitPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var publisherInstance StatusPublisher = NoopPublisher{}

// InitPublisher connects to RabbitMQ when url is set, otherwise keeps the no-op publisher
func InitPublisher(url string) (StatusPublisher, error) {
	if url == "" {
		publisherInstance = NoopPublisher{}
		return publisherInstance, nil
	}
	p, err := NewRabbitPublisher(url)
	if err != nil {
		return nil, err
	}
	publisherInstance = p
	return p, nil
}

// GetPublisher returns the shared status publisher
func GetPublisher() StatusPublisher {
	return publisherInstance
}

// SetPublisher sets the shared status publisher (primarily for testing)
func SetPublisher(p StatusPublisher) {
	publisherInstance = p
}

// publishQuietly logs publish failures; a missed event only delays other terminals
func publishQuietly(ctx context.Context, p StatusPublisher, event StatusEvent) {
	if p == nil {
		return
	}
	if err := p.PublishStatusChange(ctx, event); err != nil {
		log.Printf("warning: order %d status event not published: %v", event.OrderID, err)
	}
}

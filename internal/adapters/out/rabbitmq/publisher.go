// Package rabbitmq publishes assignment events to a durable topic exchange.
// Routing keys are derived from the event name, so ASSIGNMENT_MATCHED is
// published as assignment.matched.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"parcelshare/internal/core/domain/model/assignment"

	"github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "parcelshare.assignments"

// Message is the wire body of a published event.
type Message struct {
	EventID      string            `json:"event_id"`
	Name         string            `json:"name"`
	AssignmentID string            `json:"assignment_id"`
	PackageID    string            `json:"package_id"`
	TripID       string            `json:"trip_id"`
	SenderID     string            `json:"sender_id"`
	TravelerID   string            `json:"traveler_id"`
	Status       string            `json:"status"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

func NewMessage(e assignment.Event) Message {
	return Message{
		EventID:      e.ID.String(),
		Name:         string(e.Name),
		AssignmentID: e.AssignmentID.String(),
		PackageID:    e.PackageID.String(),
		TripID:       e.TripID.String(),
		SenderID:     e.SenderID.String(),
		TravelerID:   e.TravelerID.String(),
		Status:       e.Status.String(),
		Attributes:   e.Attributes,
		OccurredAt:   e.OccurredAt.UTC(),
	}
}

// RoutingKey turns SAFETY_GATE_COMPLETE into safety.gate.complete.
func RoutingKey(name assignment.EventName) string {
	return strings.ReplaceAll(strings.ToLower(string(name)), "_", ".")
}

// EventPublisher holds one connection and one channel. Publish is safe for
// concurrent use.
type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *slog.Logger
}

func NewEventPublisher(amqpURL string, exchange string, logger *slog.Logger) (*EventPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	p := &EventPublisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger.With("component", "rabbitmq_publisher", "exchange", exchange),
	}
	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return p, nil
}

func (p *EventPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return err
	}
	p.channel = ch
	return nil
}

// Publish sends event as persistent JSON. A failed publish reopens the
// channel and is tried once more.
func (p *EventPublisher) Publish(ctx context.Context, event assignment.Event) error {
	body, err := json.Marshal(NewMessage(event))
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Name),
		Timestamp:    event.OccurredAt.UTC(),
		Body:         body,
	}
	key := RoutingKey(event.Name)

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, publishing)
	if err == nil {
		return nil
	}

	p.logger.Warn("publish failed, reopening channel", "routing_key", key, "error", err)
	if reopenErr := p.openChannel(); reopenErr != nil {
		return errors.Join(err, reopenErr)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, key, false, false, publishing)
}

func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errList []error
	if p.channel != nil {
		errList = append(errList, p.channel.Close())
	}
	if p.conn != nil {
		errList = append(errList, p.conn.Close())
	}
	return errors.Join(errList...)
}

// FallbackPublisher is used when no broker is configured or reachable at
// startup. It logs each event and reports success so the outbox drains.
type FallbackPublisher struct {
	logger *slog.Logger
}

func NewFallbackPublisher(logger *slog.Logger) *FallbackPublisher {
	return &FallbackPublisher{logger: logger.With("component", "rabbitmq_publisher", "mode", "fallback")}
}

func (p *FallbackPublisher) Publish(ctx context.Context, event assignment.Event) error {
	p.logger.InfoContext(ctx, "event publish skipped",
		"event", string(event.Name),
		"routing_key", RoutingKey(event.Name),
		"assignment_id", event.AssignmentID.String(),
	)
	return nil
}

func (p *FallbackPublisher) Close() error { return nil }

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher enqueues run messages and publishes status updates.
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	closer   func() error
	queue    string
	exchange string
	now      func() time.Time
}

// Dial connects to the broker and declares the run queue and the updates exchange.
func Dial(url, queueName, exchange string) (*Publisher, error) {
	p := newPublisher(nil, queueName, exchange)
	conn, ch, err := connect(url, p.queue, p.exchange)
	if err != nil {
		return nil, err
	}
	p.ch = ch
	p.closer = conn.Close
	return p, nil
}

func connect(url, queueName, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("error opening RabbitMQ channel: %w", err)
	}
	if err := declare(ch, queueName, exchange); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func newPublisher(ch channel, queueName, exchange string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{ch: ch, queue: queueName, exchange: exchange, now: time.Now}
}

// declare creates the durable run queue and the topic exchange for updates.
func declare(ch *amqp.Channel, queueName, exchange string) error {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Enqueue publishes a persistent run message to the run queue.
func (p *Publisher) Enqueue(msg RunMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal run message: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// PublishStatus broadcasts a status update under run.<id>. A zero timestamp is filled in.
func (p *Publisher) PublishStatus(update StatusUpdate) error {
	if update.Timestamp.IsZero() {
		update.Timestamp = p.now().UTC()
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(p.exchange, RoutingKey(update.RunID), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

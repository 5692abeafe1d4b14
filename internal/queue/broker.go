// Package queue - фоновая генерация шагов через RabbitMQ.
package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	Exchange     = "careerlogy.events"
	ExchangeType = "topic"

	connectAttempts = 10
)

// Broker - соединение + канал, exchange объявляется при подключении.
type Broker struct {
	url    string
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

func NewBroker(url string, logger *zap.Logger) (*Broker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Broker{url: url, logger: logger}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Broker) connect() error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		b.conn, err = amqp.Dial(b.url)
		if err == nil {
			break
		}
		b.logger.Warn("rabbitmq connection failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
		)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("rabbitmq connect after %d attempts: %w", connectAttempts, err)
	}

	b.ch, err = b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	return b.ch.ExchangeDeclare(
		Exchange,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

func (b *Broker) Publish(ctx context.Context, routingKey string, body []byte) error {
	return b.ch.PublishWithContext(ctx,
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Subscribe объявляет durable очередь и привязывает ее к exchange по pattern.
func (b *Broker) Subscribe(queueName, pattern string) (<-chan amqp.Delivery, error) {
	q, err := b.ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	if err := b.ch.QueueBind(q.Name, pattern, Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s to %s: %w", queueName, pattern, err)
	}

	// по одному сообщению на воркер: девять вызовов LLM на задачу
	if err := b.ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return b.ch.Consume(
		q.Name,
		"",    // consumer tag
		false, // auto-ack
		false, false, false, nil,
	)
}

func (b *Broker) Close() {
	if b.ch != nil {
		b.ch.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}

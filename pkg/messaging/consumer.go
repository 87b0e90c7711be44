package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dayflow/dayflow-backend/pkg/logger"
)

const maxRedeliveries = 3

// MessageHandler handles one decoded event
type MessageHandler func(ctx context.Context, event *Event) error

// Consumer dispatches events from one queue to handlers keyed by event type
type Consumer struct {
	rmq       *RabbitMQ
	queueName string
	transient bool
	handlers  map[string]MessageHandler
	logger    *logger.Logger
}

// NewConsumer declares queueName and returns a consumer for it. An empty
// queueName gives a per-connection queue; see RabbitMQ.DeclareQueue.
func NewConsumer(rmq *RabbitMQ, queueName string, log *logger.Logger) (*Consumer, error) {
	q, err := rmq.DeclareQueue(queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	return &Consumer{
		rmq:       rmq,
		queueName: q.Name,
		transient: queueName == "",
		handlers:  make(map[string]MessageHandler),
		logger:    log.WithComponent("consumer"),
	}, nil
}

// Queue returns the declared queue name
func (c *Consumer) Queue() string {
	return c.queueName
}

// Subscribe binds the queue to exchange for routingKeyPattern
func (c *Consumer) Subscribe(exchange, routingKeyPattern string) error {
	if err := c.rmq.DeclareExchange(exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := c.rmq.BindQueue(c.queueName, exchange, routingKeyPattern); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Info().
		Str("queue", c.queueName).
		Str("exchange", exchange).
		Str("routing_key", routingKeyPattern).
		Msg("subscribed to exchange")

	return nil
}

// RegisterHandler registers the handler for eventType
func (c *Consumer) RegisterHandler(eventType string, handler MessageHandler) {
	c.handlers[eventType] = handler
}

// Start consumes in a background goroutine until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.rmq.Channel().Consume(
		c.queueName, // queue
		"",          // consumer tag (auto-generated)
		false,       // auto-ack
		c.transient, // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info().Str("queue", c.queueName).Msg("consumer started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Str("queue", c.queueName).Msg("consumer stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn().Str("queue", c.queueName).Msg("message channel closed")
					return
				}
				c.handleMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var event Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error().Err(err).Str("queue", c.queueName).Msg("dropping malformed event")
		msg.Reject(false)
		return
	}

	ctx = WithCorrelationID(ctx, event.CorrelationID)

	handler, ok := c.handlers[event.Type]
	if !ok {
		msg.Ack(false)
		return
	}

	err := handler(ctx, &event)
	if err == nil {
		msg.Ack(false)
		return
	}

	log := c.logger.Error().
		Err(err).
		Str("event_type", event.Type).
		Str("event_id", event.ID)

	if c.exhausted(msg) {
		log.Msg("giving up on event")
		msg.Reject(false)
		return
	}

	log.Msg("failed to process event, requeueing")
	msg.Nack(false, true)
}

// exhausted reports whether a failed delivery should be dropped rather than
// requeued. Durable queues count dead-letter rounds; transient queues have
// no dead-letter exchange and get a single redelivery.
func (c *Consumer) exhausted(msg amqp.Delivery) bool {
	if c.transient {
		return msg.Redelivered
	}
	return deathCount(msg) >= maxRedeliveries
}

func deathCount(msg amqp.Delivery) int {
	deaths, ok := msg.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		if d, ok := death.(amqp.Table); ok {
			if count, ok := d["count"].(int64); ok {
				return int(count)
			}
		}
	}
	return 0
}

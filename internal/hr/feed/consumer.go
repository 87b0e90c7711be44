package feed

import (
	"context"

	"github.com/dayflow/dayflow-backend/pkg/logger"
	"github.com/dayflow/dayflow-backend/pkg/messaging"
)

// Refresher is anything whose cached state can be invalidated
type Refresher interface {
	Refresh()
}

// ChangeHandler turns collection change events into refreshes (testable
// without RabbitMQ)
type ChangeHandler struct {
	targets []Refresher
	logger  *logger.Logger
}

// NewChangeHandler creates a handler refreshing every target
func NewChangeHandler(log *logger.Logger, targets ...Refresher) *ChangeHandler {
	return &ChangeHandler{targets: targets, logger: log}
}

// HandleEvent processes a collection changed event
func (h *ChangeHandler) HandleEvent(ctx context.Context, event *messaging.Event) error {
	var data messaging.CollectionChangedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	h.logger.Debug().
		Str("collection", data.Collection).
		Int64("version", data.Version).
		Msg("collection changed")

	for _, t := range h.targets {
		t.Refresh()
	}
	return nil
}

// ChangeConsumer consumes collection change events from the HR exchange
type ChangeConsumer struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewChangeConsumer subscribes queueName to collection change events. An
// empty queueName gives the instance its own queue.
func NewChangeConsumer(rmq *messaging.RabbitMQ, queueName string, log *logger.Logger, targets ...Refresher) (*ChangeConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, queueName, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeHREvents, messaging.EventCollectionChanged); err != nil {
		return nil, err
	}

	handler := NewChangeHandler(log, targets...)
	consumer.RegisterHandler(messaging.EventCollectionChanged, handler.HandleEvent)

	return &ChangeConsumer{consumer: consumer, logger: log}, nil
}

// Start starts consuming messages
func (c *ChangeConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

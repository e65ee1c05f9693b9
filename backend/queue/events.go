package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// Activity event types.
const (
	HabitCreated        = "habit.created"
	HabitUpdated        = "habit.updated"
	HabitStreakAdjusted = "habit.streak_adjusted"
	HabitDeleted        = "habit.deleted"
	GoalCreated         = "goal.created"
	GoalSuggested       = "goal.suggested"
	GoalUpdated         = "goal.updated"
	GoalDeleted         = "goal.deleted"
	UserRegistered      = "user.registered"
)

// ActivityQueueName is the RabbitMQ queue activity events are published to.
const ActivityQueueName = "activityQueue"

// Event is the JSON body of an activity message.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Subject any       `json:"subject,omitempty"`
}

// NewEvent stamps an event of the given type with a fresh id and the current time.
func NewEvent(eventType string, subject any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Subject: subject,
	}
}

// Notifier receives activity events. Implementations must not block the caller for long
// and never fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// EventProducerFactory creates EventProducer instances.
type EventProducerFactory struct{}

// EventProducer publishes serialized events on an AMQP channel.
type EventProducer struct {
	channel *amqp.Channel
	queue   *amqp.Queue
}

func (f *EventProducerFactory) CreateProducer(ch *amqp.Channel, queue *amqp.Queue) (Producer, error) {
	return &EventProducer{channel: ch, queue: queue}, nil
}

// Publish is a method on EventProducer for publishing a message to the AMQP queue.
func (ep *EventProducer) Publish(body []byte) error {
	err := ep.channel.Publish(
		"",            // exchange
		ep.queue.Name, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	return nil
}

// QueueNotifier publishes events through a Queue, choosing producers round robin.
type QueueNotifier struct {
	queue  *Queue
	next   atomic.Uint64
	logger *slog.Logger
}

func NewQueueNotifier(q *Queue, logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// Notify publishes the event. Failures are logged and swallowed.
func (n *QueueNotifier) Notify(ctx context.Context, event Event) {
	if err := n.publish(event); err != nil {
		n.logger.WarnContext(ctx, "activity_publish_failed", "type", event.Type, "err", err.Error())
	}
}

func (n *QueueNotifier) publish(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.New("failed to marshal event: " + err.Error())
	}

	producerCount := len(n.queue.Producers)
	if producerCount == 0 {
		return errors.New("no producers available")
	}

	idx := n.next.Add(1) - 1
	producer := n.queue.Producers[idx%uint64(producerCount)]

	if err := producer.Publish(body); err != nil {
		return errors.New("failed to publish event: " + err.Error())
	}
	return nil
}

// BuildActivityQueue initializes the activity queue with numProducers producers.
func BuildActivityQueue(rabbitMQURL string, numProducers int) (*Queue, error) {
	if numProducers < 1 {
		numProducers = 1
	}
	prodFactories := make([]ProducerFactory, numProducers)
	for i := 0; i < numProducers; i++ {
		prodFactories[i] = &EventProducerFactory{}
	}
	return InitQueue(rabbitMQURL, ActivityQueueName, prodFactories)
}

package queue

import (
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// Producer interface provides the Publish method to publish messages to RabbitMQ.
// Publish sends a message body as a byte array to RabbitMQ.
// Returns an error if there was a problem.
type Producer interface {
	Publish(body []byte) error
}

// ProducerFactory interface provides the CreateProducer method to instantiate new producers.
// CreateProducer uses a RabbitMQ channel and queue details to create a new Producer.
type ProducerFactory interface {
	CreateProducer(ch *amqp.Channel, queue *amqp.Queue) (Producer, error)
}

// Queue holds the producers used to publish messages and the connection they share.
type Queue struct {
	Producers []Producer
	conn      *amqp.Connection
}

// connect function establishes a connection to RabbitMQ and opens a new channel.
// The function listens for closure of the connection and logs any closure error.
// Returns the RabbitMQ connection, channel, and an error if there was a problem.
func connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	if err = ch.Confirm(false); err != nil {
		conn.Close()
		return nil, nil, err
	}

	notifyClose := make(chan *amqp.Error, 1)
	conn.NotifyClose(notifyClose)

	go func() {
		if err := <-notifyClose; err != nil {
			slog.Error("rabbitmq_connection_closed", "err", err.Error())
		}
	}()

	return conn, ch, nil
}

// InitQueue function initializes a Queue with producers.
// It first establishes a connection to the RabbitMQ instance using the provided URL.
// Upon a successful connection, it declares a durable queue using the provided queue name,
// and uses the provided producer factories to create producers for the queue.
func InitQueue(url string, queueName string, prodFactories []ProducerFactory) (*Queue, error) {
	conn, ch, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	queue, err := ch.QueueDeclare(
		queueName,
		true,  // Durable
		false, // Delete when unused
		false, // Exclusive
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error declaring queue: %w", err)
	}

	var producers []Producer
	for _, prodFactory := range prodFactories {
		producer, err := prodFactory.CreateProducer(ch, &queue)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("error creating producer: %w", err)
		}
		producers = append(producers, producer)
	}

	return &Queue{Producers: producers, conn: conn}, nil
}

// Close closes the underlying RabbitMQ connection.
func (q *Queue) Close() error {
	if q == nil || q.conn == nil {
		return nil
	}
	return q.conn.Close()
}

// Package service provides outbound integrations used by the handlers.
// The queue publisher pushes domain events to RabbitMQ; errors are
// logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/hoangnecon/cafe-pos/internal/queue"
)

// QueuePublisher publishes domain events to the configured broker.
// Each publish dials a fresh connection, which keeps the publisher
// stateless at the cost of a handshake per bill; payment volume is low
// enough that this trade is fine.
type QueuePublisher struct {
	URL string
}

// NewQueuePublisher returns a publisher for the given AMQP URL.
func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{URL: url}
}

// PublishBillCreated publishes a BillCreatedEvent to the "bill.created"
// queue. The function attempts to be robust and to never panic; any
// error is logged and returned so the caller can choose to ignore it.
// Messages are marked as persistent.
func (p *QueuePublisher) PublishBillCreated(ctx context.Context, event q.BillCreatedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		"bill.created", // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",             // default exchange
		"bill.created", // routing key = queue name
		false,          // mandatory
		false,          // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

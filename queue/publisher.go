// Package queue publishes booking events to RabbitMQ for downstream
// consumers (reminder senders, analytics). Failures are logged and never
// interrupt the request that produced the event.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/utils"
)

const publishTimeout = 5 * time.Second

type Publisher struct {
	url   string
	queue string
	// publish is swapped in tests.
	publish func(ctx context.Context, msg amqp.Publishing) error
}

func NewPublisher(url, queue string) *Publisher {
	p := &Publisher{url: url, queue: queue}
	p.publish = p.dialAndPublish
	return p
}

// Notify publishes evt in the background.
func (p *Publisher) Notify(_ context.Context, evt events.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, evt); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event": evt.Type,
				"queue": p.queue,
			}).Errorf("rabbitmq: publish failed: %v", err)
		}
	}()
}

func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	msg, err := Message(evt)
	if err != nil {
		return err
	}
	return p.publish(ctx, msg)
}

// Message builds the persistent JSON message for evt.
func Message(evt events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, err
	}
	ts := evt.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts.UTC(),
		Type:         evt.Type,
		Body:         body,
	}, nil
}

func (p *Publisher) dialAndPublish(ctx context.Context, msg amqp.Publishing) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable, survives broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"yamdb/pkg/mail"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string // mail queue name
}

// NewClient connects to RabbitMQ, opens a channel and declares the mail queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = "mail_queue"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logrus.WithField("queue", cfg.Queue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Send publishes msg to the mail queue as a persistent JSON message, so the
// Client can stand in for a mail.Sender.
func (c *Client) Send(msg mail.Message) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := encode(msg)
	if err != nil {
		return err
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}

	logrus.WithField("to", msg.To).Debug("mail message queued")
	return nil
}

// ConsumeMail delivers every queued message through sender in a background
// goroutine. Messages are acked on success and requeued on failure; bodies
// that cannot be decoded are dropped.
func (c *Client) ConsumeMail(sender mail.Sender) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	q, err := declare(c.channel, c.queue)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		q.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logrus.WithField("queue", q.Name).Info("waiting for mail messages")

	go func() {
		for d := range msgs {
			handleDelivery(d, sender)
		}
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery handleDelivery needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(d amqp.Delivery, sender mail.Sender) {
	process(&d, d.Body, d.DeliveryTag, sender)
}

func process(ack acknowledger, body []byte, tag uint64, sender mail.Sender) {
	log := logrus.WithField("delivery_tag", tag)

	msg, err := decode(body)
	if err != nil {
		log.WithError(err).Error("dropping undecodable mail message")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("error nacking message")
		}
		return
	}

	if err := sender.Send(msg); err != nil {
		log.WithError(err).Warn("mail delivery failed, requeueing")
		if nackErr := ack.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("error nacking message")
		}
		return
	}

	if ackErr := ack.Ack(false); ackErr != nil {
		log.WithError(ackErr).Error("error acking message")
	}
}

func encode(msg mail.Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mail message to JSON: %w", err)
	}
	return body, nil
}

func decode(body []byte) (mail.Message, error) {
	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("failed to unmarshal mail message: %w", err)
	}
	if msg.To == "" {
		return msg, fmt.Errorf("mail message has no recipient")
	}
	return msg, nil
}

package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp091.Channel the sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPSink publishes hits as JSON to a topic exchange, routed by kind
// (analytics.pageview, analytics.event).
type AMQPSink struct {
	channel  Publisher
	exchange string
	closers  []func() error
}

func NewAMQPSink(channel Publisher, exchange string) *AMQPSink {
	return &AMQPSink{channel: channel, exchange: exchange}
}

// DialAMQP connects, declares the exchange and returns a sink that owns the
// connection.
func DialAMQP(uri, exchange string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	sink := NewAMQPSink(channel, exchange)
	sink.closers = []func() error{channel.Close, conn.Close}
	return sink, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Send(ctx context.Context, hit Hit) error {
	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("failed to marshal hit: %w", err)
	}

	err = s.channel.PublishWithContext(ctx,
		s.exchange,      // exchange
		RoutingKey(hit), // routing key
		false,           // mandatory
		false,           // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   hit.At,
			Body:        body,
			Headers: amqp091.Table{
				"client_id": hit.ClientID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish hit: %w", err)
	}
	return nil
}

// Close releases the connection opened by DialAMQP.
func (s *AMQPSink) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func RoutingKey(hit Hit) string {
	return "analytics." + string(hit.Kind)
}

// Package rabbitmq publishes delivery status events to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"delivery-dispatch/internal/live"
	"delivery-dispatch/internal/logx"
)

const routingPrefix = "delivery.status."

// confirmation is the broker's answer for one published message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// channel is the part of *amqp.Channel the notifier uses. publish returns a
// nil confirmation when the channel is not in confirm mode.
type channel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

// amqpChannel binds every publish to its own deferred confirmation, so a
// late confirm can never be read by another message.
type amqpChannel struct{ ch *amqp.Channel }

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, nil
	}
	return dc, nil
}

func (c amqpChannel) Close() error { return c.ch.Close() }

// Notifier implements live.Sink over AMQP.
type Notifier struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   logx.Logger
}

var _ live.Sink = (*Notifier)(nil)

// Dial connects, declares the exchange and enables publisher confirms.
// It returns (nil, nil) when url is empty.
func Dial(url, exchange string, logger logx.Logger) (*Notifier, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	if exchange == "" {
		return nil, errors.New("rabbitmq: empty exchange")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq confirm: %w", err)
	}

	n := newNotifier(amqpChannel{ch: ch}, exchange, logger)
	n.conn = conn
	return n, nil
}

func newNotifier(ch channel, exchange string, logger logx.Logger) *Notifier {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Notifier{ch: ch, exchange: exchange, logger: logger}
}

// RoutingKey is the key a status event is published under.
func RoutingKey(e live.Event) string {
	return routingPrefix + string(e.Status)
}

// Notify publishes e as persistent JSON and waits for the broker to confirm
// that message.
func (n *Notifier) Notify(ctx context.Context, e live.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("rabbitmq encode: %w", err)
	}

	conf, err := n.ch.publish(ctx, n.exchange, RoutingKey(e), amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.DeliveryID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	if conf == nil {
		return nil
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq confirm: %w", err)
	}
	if !acked {
		return errors.New("rabbitmq: publish nacked by broker")
	}
	n.logger.Debug("status event published",
		logx.String("delivery_id", e.DeliveryID),
		logx.String("status", string(e.Status)),
	)
	return nil
}

// Close releases the channel and connection.
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	var errs []error
	if n.ch != nil {
		errs = append(errs, n.ch.Close())
	}
	if n.conn != nil {
		errs = append(errs, n.conn.Close())
	}
	return errors.Join(errs...)
}

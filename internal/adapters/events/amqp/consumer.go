package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// UpdateHandler processes one venue update. Returning an error leaves the
// message for one redelivery.
type UpdateHandler func(ctx context.Context, update domain.VenueUpdate) error

// Consumer reads venue updates from the durable queue with manual acks.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger zerolog.Logger
}

func NewConsumer(url string, prefetch int, logger zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			logger.Warn().Err(err).Msg("rabbitmq: set QoS failed")
		}
	}

	if err := declareQueue(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, logger: logger}, nil
}

// Run blocks until ctx is cancelled or the broker closes the delivery
// channel. Undecodable bodies are dropped. Handler failures are requeued
// once and dropped if they fail again.
func (c *Consumer) Run(ctx context.Context, handle UpdateHandler) error {
	msgs, err := c.ch.Consume(VenueUpdatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: queue consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq: deliveries channel closed")
			}
			c.deliver(ctx, d, handle)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery, handle UpdateHandler) {
	var update domain.VenueUpdate
	if err := json.Unmarshal(d.Body, &update); err != nil {
		c.logger.Error().Err(err).Msg("dropping malformed venue update")
		_ = d.Nack(false, false)
		return
	}

	log := c.logger.With().Str("venue_id", update.Venue.ID.String()).Str("action", string(update.Action)).Logger()
	if err := handle(ctx, update); err != nil {
		requeue := !d.Redelivered
		log.Error().Err(err).Bool("requeue", requeue).Msg("failed to handle venue update")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	if err := c.ch.Close(); err != nil {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}

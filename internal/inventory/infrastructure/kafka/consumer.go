package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/figurine-storefront/internal/inventory/application"
	orderdom "github.com/dmehra2102/figurine-storefront/internal/order/domain"
	"github.com/dmehra2102/figurine-storefront/pkg/outbox"
	"github.com/dmehra2102/figurine-storefront/pkg/tracing"
)

const (
	maxAttempts  = 5
	retryBackoff = 2 * time.Second
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	EventKey(topic, eventID string) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Consumer struct {
	log    *slog.Logger
	reader Reader
	svc    *application.Service
	idem   Deduper
	tracer trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, svc *application.Service, idem Deduper) *Consumer {
	return &Consumer{
		log:    log,
		reader: reader,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("inventory-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.process(ctx, msg); err != nil {
			return nil
		}
	}
}

// process retries a failing message with a linear backoff, then logs it and
// moves on so one poison event cannot stall the partition.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt == maxAttempts {
			c.log.Error("giving up on message", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
			_ = c.reader.CommitMessages(ctx, msg)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	if tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader) != orderdom.EventOrderPaid {
		_ = c.reader.CommitMessages(ctx, msg)
		return nil
	}

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	if id := tracing.HeaderValue(msg.Headers, outbox.EventIDHeader); id != "" {
		key = c.idem.EventKey(msg.Topic, id)
	}
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		_ = c.reader.CommitMessages(ctx, msg)
		return nil
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderPaid")
	defer span.End()

	var ev orderdom.OrderPaid
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.Error("unmarshal failed", "err", err)
		_ = c.reader.CommitMessages(ctx, msg)
		return nil
	}

	sold, err := c.svc.ApplyPaidOrder(msgCtx, ev)
	if err != nil {
		c.log.Error("mark sold failed", "order_id", ev.OrderID, "err", err)
		if err := c.idem.Forget(ctx, key); err != nil {
			c.log.Warn("idempotency release failed", "key", key, "err", err)
		}
		return err
	}
	c.log.Info("inventory updated for paid order", "order_id", ev.OrderID, "products", len(sold.ProductIDs))
	return c.reader.CommitMessages(ctx, msg)
}

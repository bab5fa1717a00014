package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrUnkeyed = errors.New("order event has no key")

type WriterOption func(*kafka.Writer)

func WithWriteTimeout(d time.Duration) WriterOption {
	return func(w *kafka.Writer) { w.WriteTimeout = d }
}

func WithCompression(c kafka.Compression) WriterOption {
	return func(w *kafka.Writer) { w.Compression = c }
}

// WithAutoTopicCreation lets the first publish create the topic; only useful
// against throwaway brokers.
func WithAutoTopicCreation() WriterOption {
	return func(w *kafka.Writer) { w.AllowAutoTopicCreation = true }
}

// Writer publishes relayed order events. Every message must carry the order
// id as key: the hash balancer then keeps OrderPlaced and OrderPaid of one
// order on one partition, in outbox order.
type Writer struct {
	w *kafka.Writer
}

func NewWriter(log *slog.Logger, brokers []string, opts ...WriterOption) *Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error(fmt.Sprintf(msg, args...), "component", "order-event-writer")
		}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return &Writer{w: w}
}

func (w *Writer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if len(m.Key) == 0 {
			return fmt.Errorf("%w: topic %s", ErrUnkeyed, m.Topic)
		}
	}
	if err := w.w.WriteMessages(ctx, msgs...); err != nil {
		var werrs kafka.WriteErrors
		if errors.As(err, &werrs) {
			return fmt.Errorf("publish order events: %d of %d failed: %w", werrs.Count(), len(msgs), err)
		}
		return fmt.Errorf("publish order events: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.w.Close()
}

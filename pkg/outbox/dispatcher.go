package outbox

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/figurine-storefront/pkg/tracing"
)

const (
	EventTypeHeader = "event_type"
	// EventIDHeader carries the outbox row id. It survives a re-publish at a
	// new offset, so consumers dedupe on it.
	EventIDHeader = "event_id"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	msg := Message(d.topic, event)
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "type", event.Type, "err", err)
		return err
	}
	d.log.Info("outbox dispatched", "event_id", event.ID, "type", event.Type, "aggregate_id", event.AggregateID)
	return nil
}

// Message builds the kafka record for an outbox event, keyed by aggregate so
// all events of one order land on the same partition.
func Message(topic string, event Event) kafka.Message {
	headers := make([]kafka.Header, 0, len(event.Headers)+3)
	for k, v := range event.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers, kafka.Header{Key: EventTypeHeader, Value: []byte(event.Type)})
	if event.ID != 0 {
		headers = append(headers, kafka.Header{Key: EventIDHeader, Value: []byte(strconv.FormatInt(event.ID, 10))})
	}
	if event.Traceparent != "" {
		headers = append(headers, kafka.Header{Key: tracing.TraceparentHeader, Value: []byte(event.Traceparent)})
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/figurine-storefront/internal/notification/application"
	"github.com/dmehra2102/figurine-storefront/internal/notification/domain"
	orderdom "github.com/dmehra2102/figurine-storefront/internal/order/domain"
	"github.com/dmehra2102/figurine-storefront/pkg/outbox"
)

type fakeReader struct {
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type memDeduper map[string]bool

func (d memDeduper) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%d:%d", topic, partition, offset)
}

func (d memDeduper) EventKey(topic, eventID string) string {
	return fmt.Sprintf("%s:event:%s", topic, eventID)
}

func (d memDeduper) Seen(_ context.Context, key string) (bool, error) {
	if d[key] {
		return true, nil
	}
	d[key] = true
	return false, nil
}

func (d memDeduper) Forget(_ context.Context, key string) error {
	delete(d, key)
	return nil
}

type mailbox struct {
	sent []domain.Message
	err  error
}

func (m *mailbox) Send(_ context.Context, msg domain.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func paidMessage(t *testing.T, email string) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(orderdom.OrderPaid{OrderID: "order-1", Number: "FJ-1", CustomerName: "Ada", CustomerEmail: email})
	require.NoError(t, err)
	msg := outbox.Message("order.events", outbox.Event{AggregateID: "order-1", Type: orderdom.EventOrderPaid, Payload: raw})
	msg.Offset = 7
	return msg
}

func newConsumer(box *mailbox) (*Consumer, *fakeReader, memDeduper) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader := &fakeReader{}
	idem := memDeduper{}
	svc := application.NewService(log, box, domain.OrderConfirmation())
	return NewConsumer(log, reader, svc, idem), reader, idem
}

func TestConsumerSendsOncePerMessage(t *testing.T) {
	box := &mailbox{}
	c, reader, _ := newConsumer(box)
	msg := paidMessage(t, "ada@example.com")

	require.NoError(t, c.handle(context.Background(), msg))
	require.NoError(t, c.handle(context.Background(), msg))

	assert.Len(t, box.sent, 1)
	assert.Equal(t, []int64{7, 7}, reader.committed)
}

func TestConsumerSendsOncePerEventAcrossOffsets(t *testing.T) {
	box := &mailbox{}
	c, reader, _ := newConsumer(box)
	raw, err := json.Marshal(orderdom.OrderPaid{OrderID: "order-1", Number: "FJ-1", CustomerName: "Ada", CustomerEmail: "ada@example.com"})
	require.NoError(t, err)
	event := outbox.Event{ID: 42, AggregateID: "order-1", Type: orderdom.EventOrderPaid, Payload: raw}

	// the relay lost its lease and published the same row again
	first := outbox.Message("order.events", event)
	first.Offset = 7
	again := outbox.Message("order.events", event)
	again.Offset = 8

	require.NoError(t, c.handle(context.Background(), first))
	require.NoError(t, c.handle(context.Background(), again))

	assert.Len(t, box.sent, 1)
	assert.Equal(t, []int64{7, 8}, reader.committed)
}

func TestConsumerSkipsOrdersWithoutEmail(t *testing.T) {
	box := &mailbox{}
	c, reader, _ := newConsumer(box)

	require.NoError(t, c.handle(context.Background(), paidMessage(t, "")))
	assert.Empty(t, box.sent)
	assert.Equal(t, []int64{7}, reader.committed)
}

func TestConsumerReleasesClaimWhenSendFails(t *testing.T) {
	box := &mailbox{err: errors.New("smtp down")}
	c, reader, idem := newConsumer(box)

	assert.Error(t, c.handle(context.Background(), paidMessage(t, "ada@example.com")))
	assert.Empty(t, reader.committed)
	assert.Empty(t, idem)
}

func TestConsumerIgnoresOtherEvents(t *testing.T) {
	box := &mailbox{}
	c, reader, _ := newConsumer(box)
	msg := outbox.Message("order.events", outbox.Event{AggregateID: "order-1", Type: orderdom.EventOrderPlaced, Payload: []byte(`{}`)})

	require.NoError(t, c.handle(context.Background(), msg))
	assert.Empty(t, box.sent)
	assert.Len(t, reader.committed, 1)
}

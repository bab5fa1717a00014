package smtp

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/figurine-storefront/internal/notification/domain"
)

func TestBuildMessage(t *testing.T) {
	m, err := NewMailer(slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		Host:     "localhost",
		Port:     2525,
		From:     "orders@figurinejunction.example",
		FromName: "Figurine Junction",
	})
	require.NoError(t, err)

	mm, err := m.build(domain.Message{
		To:      "ada@example.com",
		ToName:  "Ada Lovelace",
		Subject: "Your order #FJ-1",
		HTML:    "<p>Thanks</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = mm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Your order #FJ-1")
	assert.Contains(t, raw, "ada@example.com")
	assert.Contains(t, raw, "orders@figurinejunction.example")
	assert.Contains(t, raw, "text/html")
}

func TestBuildRejectsBadRecipient(t *testing.T) {
	m, err := NewMailer(slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Host: "localhost", Port: 25, From: "orders@figurinejunction.example"})
	require.NoError(t, err)

	_, err = m.build(domain.Message{To: "not an address"})
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		event string
		args  []any
	}{
		{"blank", "   ", "", nil},
		{"comment", "# nothing", "", nil},
		{"event only", "ping", "ping", nil},
		{"json array", `orders.created ["id-1", 2]`, "orders.created", []any{"id-1", float64(2)}},
		{"json object", `orders.created {"id":"id-1"}`, "orders.created", []any{map[string]any{"id": "id-1"}}},
		{"plain text", "greet hello world", "greet", []any{"hello world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, args := parseLine(tt.line)
			assert.Equal(t, tt.event, event)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPipeline(t *testing.T) {
	t.Run("relays every event when none are selected", func(t *testing.T) {
		ch := new(mockChannel)
		ch.On("PublishWithContext", mock.Anything, "test.exchange", mock.Anything, false, false, mock.Anything).Return(nil)
		reg := prometheus.NewRegistry()
		p, err := newPipeline(context.Background(), config{exchange: "test.exchange", maxInterceptors: 10}, ch, reg, discardLogger())
		require.NoError(t, err)

		input := "a [1]\nb\n\na [2]\n"
		require.NoError(t, p.consume(context.Background(), strings.NewReader(input)))

		ch.AssertNumberOfCalls(t, "PublishWithContext", 3)
		assert.Equal(t, "a", ch.Calls[0].Arguments.String(2))
		assert.Equal(t, "b", ch.Calls[1].Arguments.String(2))
		assert.Equal(t, int64(3), p.delivered.Load())

		count, err := testutil.GatherAndCount(reg, "intercept_relay_events_total")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("relays only selected events", func(t *testing.T) {
		ch := new(mockChannel)
		ch.On("PublishWithContext", mock.Anything, mock.Anything, "a", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		p, err := newPipeline(context.Background(), config{exchange: "x", events: []string{"a"}, maxInterceptors: 10}, ch, prometheus.NewRegistry(), discardLogger())
		require.NoError(t, err)

		require.NoError(t, p.consume(context.Background(), strings.NewReader("a\nb\na\n")))

		ch.AssertNumberOfCalls(t, "PublishWithContext", 2)
		ch.AssertExpectations(t)
	})

	t.Run("publish failures are counted", func(t *testing.T) {
		ch := new(mockChannel)
		ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(amqp.ErrClosed)
		p, err := newPipeline(context.Background(), config{exchange: "x", events: []string{"a"}, maxInterceptors: 10, retries: 0}, ch, prometheus.NewRegistry(), discardLogger())
		require.NoError(t, err)

		assert.NoError(t, p.handle("a"))

		ch.AssertNumberOfCalls(t, "PublishWithContext", 1)
		assert.Equal(t, int64(1), p.failed.Load())
	})

	t.Run("cancelled context interrupts publish retries", func(t *testing.T) {
		ch := new(mockChannel)
		ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(amqp.ErrClosed)
		ctx, cancel := context.WithCancel(context.Background())
		p, err := newPipeline(ctx, config{exchange: "x", events: []string{"a"}, maxInterceptors: 10, retries: 100}, ch, prometheus.NewRegistry(), discardLogger())
		require.NoError(t, err)
		cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = p.handle("a")
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish kept retrying after cancellation")
		}
		assert.Equal(t, int64(1), p.failed.Load())
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		p, err := newPipeline(context.Background(), config{exchange: "x", maxInterceptors: 10}, new(mockChannel), prometheus.NewRegistry(), discardLogger())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader, writer := io.Pipe()
		defer writer.Close()

		assert.NoError(t, p.consume(ctx, reader))
	})
}

func TestDryRunChannel(t *testing.T) {
	var buf bytes.Buffer
	ch := &logChannel{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	err := ch.PublishWithContext(context.Background(), "x", "a", false, false, amqp.Publishing{Body: []byte(`{"event":"a"}`)})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "routingKey=a")
}

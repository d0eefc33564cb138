package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func header(msg kafka.Message, key string) string {
	return headerCarrier{headers: &msg.Headers}.Get(key)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "eldisco.product.created", Topic("product", "created"))
}

func TestNewEvent_Fields(t *testing.T) {
	payload := map[string]any{"codigoInterno": "AB12CD34"}
	event, err := NewEvent("product.created", "64b7f0c2a1b2c3d4e5f60718", "product", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var decoded map[string]any
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, "AB12CD34", decoded["codigoInterno"])
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("x", "1", "test", "svc", make(chan int))
	assert.ErrorContains(t, err, "marshal x payload")
}

func TestEvent_RoundTrip(t *testing.T) {
	event, err := NewEvent("brand.updated", "b1", "brand", "storefront", map[string]string{"nombre": "Acme"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1").WithMetadata("store", "memory")

	raw, err := event.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "memory", decoded.Metadata["store"])
	assert.JSONEq(t, `{"nombre":"Acme"}`, string(decoded.Data))
}

func TestProducer_PublishBuildsMessage(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	w := &fakeWriter{}
	p := &Producer{writer: w, logger: testLogger()}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	event, err := NewEvent("product.created", "p-1", "product", "storefront", map[string]int{"stock": 3})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	topic := Topic("product", "created")
	before := testutil.ToFloat64(producerMessagesPublished.WithLabelValues(topic))
	require.NoError(t, p.Publish(ctx, topic, event))
	assert.Equal(t, before+1, testutil.ToFloat64(producerMessagesPublished.WithLabelValues(topic)))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "p-1", string(msg.Key))
	assert.Equal(t, "product.created", header(msg, "event_type"))
	assert.Equal(t, "storefront", header(msg, "source"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))
	assert.Contains(t, header(msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	var envelope Event
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, event.EventID, envelope.EventID)
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &Producer{writer: w, logger: testLogger()}

	event, err := NewEvent("category.created", "c-1", "category", "storefront", struct{}{})
	require.NoError(t, err)

	topic := Topic("category", "created")
	before := testutil.ToFloat64(producerPublishErrors.WithLabelValues(topic))
	err = p.Publish(context.Background(), topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to eldisco.category.created")
	assert.Equal(t, before+1, testutil.ToFloat64(producerPublishErrors.WithLabelValues(topic)))
}

func TestProducer_PingWithoutBrokers(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, logger: testLogger()}
	assert.ErrorContains(t, p.Ping(context.Background()), "no brokers")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: testLogger()}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "a", Value: []byte("1")}}
	c := headerCarrier{headers: &headers}

	c.Set("a", "2")
	c.Set("b", "3")
	assert.Equal(t, "2", c.Get("a"))
	assert.Equal(t, "3", c.Get("b"))
	assert.Empty(t, c.Get("missing"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
}

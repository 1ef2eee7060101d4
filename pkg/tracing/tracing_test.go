package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp, err := newProvider(context.Background(), Config{ServiceName: "library-test"}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return recorder
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ParentChild(t *testing.T) {
	recorder := installRecorder(t)

	ctx, root := StartSpan(context.Background(), "loan.checkout", attribute.Int("book.id", 7))
	_, child := StartSpan(ctx, "db.lock_book")
	child.End()
	root.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "db.lock_book", spans[0].Name())
	assert.Equal(t, "loan.checkout", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[1].Attributes(), attribute.Int("book.id", 7))
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "loan.return")
	RecordError(span, nil)
	RecordError(span, errors.New("already returned"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "already returned", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	installRecorder(t)
	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	assert.Len(t, TraceID(ctx), 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceID(ctx))
}

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/pkg/metrics"
)

type fakePublisher struct {
	keys     []string
	messages []interface{}
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, routingKey)
	f.messages = append(f.messages, message)
	return nil
}

func sampleEvent() loan.Event {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return loan.Event{
		Type:          loan.EventCheckedOut,
		TransactionID: 11,
		UserID:        2,
		BookID:        3,
		CheckoutDate:  now,
		DueDate:       now.Add(14 * 24 * time.Hour),
		OccurredAt:    now,
	}
}

func TestLoanEventPublisher(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	fake := &fakePublisher{}
	p := NewLoanEventPublisher(fake, m)

	require.NoError(t, p.PublishLoanEvent(context.Background(), sampleEvent()))
	assert.Equal(t, []string{loan.EventCheckedOut}, fake.keys)
	assert.Equal(t, sampleEvent(), fake.messages[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublishedTotal.WithLabelValues(loan.EventCheckedOut, metrics.ResultSuccess)))

	fake.err = errors.New("channel closed")
	err := p.PublishLoanEvent(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, fake.err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublishedTotal.WithLabelValues(loan.EventCheckedOut, metrics.ResultFailure)))
}

func TestLoanEventLogger(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New(prometheus.NewRegistry())
	l := NewLoanEventLogger(slog.New(slog.NewJSONHandler(&buf, nil)), m)

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, l.Handle(context.Background(), loan.EventCheckedOut, body))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loan event", line["msg"])
	assert.Equal(t, loan.EventCheckedOut, line["type"])
	assert.Equal(t, float64(11), line["transaction_id"])
	assert.Equal(t, false, line["returned"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesConsumedTotal.WithLabelValues(loan.EventCheckedOut)))

	buf.Reset()
	assert.NoError(t, l.Handle(context.Background(), "loan.returned", []byte("{not json")))
	assert.Contains(t, buf.String(), "malformed loan event dropped")
}

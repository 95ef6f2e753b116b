package kafka_test

import (
	"context"
	"errors"
	"testing"

	"agrimarket/pkg/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestNewClient_ParsesBrokers(t *testing.T) {
	c := kafka.NewClient(" a:9092, ,b:9092 ")
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Brokers)
	assert.True(t, c.Enabled())
	assert.False(t, kafka.NewClient("").Enabled())
}

func TestPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := kafka.NewPublisher(w)

	require.NoError(t, p.Publish(context.Background(), "order.placed", "o-1", []byte(`{"order_id":"o-1"}`)))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o-1", string(msg.Key))
	assert.Equal(t, `{"order_id":"o-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event", msg.Headers[0].Key)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))
}

func TestPublisher_PublishError(t *testing.T) {
	p := kafka.NewPublisher(&recordingWriter{err: errors.New("broker down")})

	err := p.Publish(context.Background(), "order.placed", "o-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

package kafka

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanReader serves queued messages and then blocks until ctx ends.
type chanReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newChanReader(msgs ...kafka.Message) *chanReader {
	r := &chanReader{msgs: make(chan kafka.Message, len(msgs)+1)}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *chanReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *chanReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }

func (r *chanReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) published() []*ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ProducerMessage(nil), p.msgs...)
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "marketscope-worker",
		Topics:  []string{TopicObservationBatch},
		Retry: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: TopicObservationDLQ,
		},
	}
}

func batchMessage(offset int64) kafka.Message {
	return kafka.Message{
		Topic:   TopicObservationBatch,
		Offset:  offset,
		Key:     []byte("austin-tx"),
		Value:   []byte(`{"x":1}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventObservationBatch)}},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ConsumerConfig)
		ok     bool
	}{
		{"valid", func(*ConsumerConfig) {}, true},
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }, false},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }, false},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }, false},
		{"bad offset reset", func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" }, false},
		{"negative retries", func(c *ConsumerConfig) { c.Retry.MaxRetries = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConsumerConfig()
			tc.mutate(&cfg)
			err := ValidateConsumerConfig(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConsumer_DeliversAndCommits(t *testing.T) {
	r := newChanReader(batchMessage(1), batchMessage(2))
	c := NewConsumerWithReader(r, testConsumerConfig(), nil, nil, nil)

	var got atomic.Int32
	var header atomic.Value
	c.Subscribe(TopicObservationBatch, func(_ context.Context, msg *Message) error {
		header.Store(msg.Headers["event_type"])
		got.Add(1)
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return r.commits() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(2), got.Load())
	assert.Equal(t, EventObservationBatch, header.Load())
	assert.True(t, r.closed)
	s := c.Stats()
	assert.Equal(t, int64(2), s.Consumed)
	assert.Equal(t, int64(2), s.Processed)
}

func TestConsumer_RetryThenSucceed(t *testing.T) {
	r := newChanReader(batchMessage(1))
	c := NewConsumerWithReader(r, testConsumerConfig(), nil, nil, nil)

	var calls atomic.Int32
	c.Subscribe(TopicObservationBatch, func(context.Context, *Message) error {
		if calls.Add(1) < 2 {
			return stderrors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(1), c.Stats().Retried)
	assert.Equal(t, int64(1), c.Stats().Processed)
}

func TestConsumer_DeadLettersAfterRetries(t *testing.T) {
	r := newChanReader(batchMessage(7))
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(r, testConsumerConfig(), dlq, nil, nil)

	var calls atomic.Int32
	c.Subscribe(TopicObservationBatch, func(context.Context, *Message) error {
		calls.Add(1)
		return stderrors.New("poison")
	})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(3), calls.Load())
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicObservationDLQ, out[0].Topic)
	assert.Equal(t, []byte("austin-tx"), out[0].Key)
	assert.Equal(t, TopicObservationBatch, out[0].Headers[HeaderOriginalTopic])
	assert.Equal(t, "poison", out[0].Headers[HeaderError])
	assert.Equal(t, "3", out[0].Headers[HeaderAttempts])
	assert.Equal(t, EventObservationBatch, out[0].Headers["event_type"])
	assert.Equal(t, int64(1), c.Stats().DeadLettered)
}

func TestConsumer_DropsWithoutDeadLetterTopic(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.Retry.DeadLetterTopic = ""
	cfg.Retry.MaxRetries = 0
	r := newChanReader(batchMessage(1))
	c := NewConsumerWithReader(r, cfg, &recordingPublisher{}, nil, nil)
	c.Subscribe(TopicObservationBatch, func(context.Context, *Message) error { return stderrors.New("bad") })

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int64(1), c.Stats().Failed)
	assert.Zero(t, c.Stats().DeadLettered)
}

func TestConsumer_UnhandledTopicIsCommitted(t *testing.T) {
	m := batchMessage(1)
	m.Topic = "other"
	r := newChanReader(m)
	c := NewConsumerWithReader(r, testConsumerConfig(), nil, nil, nil)

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestConsumer_ShutdownDuringRetryLeavesOffset(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.Retry.RetryBackoff = time.Hour
	cfg.Retry.MaxRetryBackoff = time.Hour
	r := newChanReader(batchMessage(1))
	c := NewConsumerWithReader(r, cfg, nil, nil, nil)

	called := make(chan struct{}, 1)
	c.Subscribe(TopicObservationBatch, func(context.Context, *Message) error {
		called <- struct{}{}
		return stderrors.New("fail")
	})

	require.NoError(t, c.Start(context.Background()))
	<-called
	require.NoError(t, c.Close())
	assert.Zero(t, r.commits())
}

func TestConsumer_PermanentErrorSkipsRetries(t *testing.T) {
	r := newChanReader(batchMessage(3))
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(r, testConsumerConfig(), dlq, nil, nil)

	var calls atomic.Int32
	c.Subscribe(TopicObservationBatch, func(context.Context, *Message) error {
		calls.Add(1)
		return Permanent(stderrors.New("undecodable"))
	})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(1), calls.Load())
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].Headers[HeaderAttempts])
	assert.Zero(t, c.Stats().Retried)
	assert.Nil(t, Permanent(nil))
}

func TestConsumer_CloseWithoutStart(t *testing.T) {
	c := NewConsumerWithReader(newChanReader(), testConsumerConfig(), nil, nil, nil)
	assert.NoError(t, c.Close())
}

//Personal.AI order the ending

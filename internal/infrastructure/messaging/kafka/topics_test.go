package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

type mockConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions []kafka.Partition
	readErr    error
}

func (m *mockConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockConn) ReadPartitions(...string) ([]kafka.Partition, error) {
	return m.partitions, m.readErr
}

func (m *mockConn) Close() error { return nil }

func TestTopicManager_CreateTopic(t *testing.T) {
	conn := &mockConn{}
	tm := NewTopicManagerWithConn(conn, nil)

	err := tm.CreateTopic(context.Background(), TopicConfig{
		Name: "t", NumPartitions: 3, ReplicationFactor: 1, RetentionMs: 1000, CleanupPolicy: "delete",
	})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, "t", conn.created[0].Topic)
	assert.Equal(t, []kafka.ConfigEntry{
		{ConfigName: "retention.ms", ConfigValue: "1000"},
		{ConfigName: "cleanup.policy", ConfigValue: "delete"},
	}, conn.created[0].ConfigEntries)
}

func TestTopicManager_CreateTopicErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  TopicConfig
		conn *mockConn
		ok   bool
	}{
		{"no name", TopicConfig{NumPartitions: 1, ReplicationFactor: 1}, &mockConn{}, false},
		{"no partitions", TopicConfig{Name: "t", ReplicationFactor: 1}, &mockConn{}, false},
		{"no replication", TopicConfig{Name: "t", NumPartitions: 1}, &mockConn{}, false},
		{"already exists", TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}, &mockConn{createErr: kafka.TopicAlreadyExists}, true},
		{"broker error", TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}, &mockConn{createErr: stderrors.New("x")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewTopicManagerWithConn(tc.conn, nil).CreateTopic(context.Background(), tc.cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTopicManager_TopicExists(t *testing.T) {
	ok, err := NewTopicManagerWithConn(&mockConn{partitions: []kafka.Partition{{ID: 0}}}, nil).TopicExists(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewTopicManagerWithConn(&mockConn{readErr: kafka.UnknownTopicOrPartition}, nil).TopicExists(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewTopicManagerWithConn(&mockConn{readErr: stderrors.New("down")}, nil).TopicExists(context.Background(), "t")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMessageQueue))
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics(TopicObservationBatch, TopicReportCompleted, TopicObservationDLQ, 3)
	require.Len(t, topics, 3)
	for _, tc := range topics {
		assert.Equal(t, 3, tc.ReplicationFactor)
		assert.Positive(t, tc.RetentionMs)
	}
	assert.Equal(t, TopicObservationDLQ, topics[2].Name)

	conn := &mockConn{}
	require.NoError(t, NewTopicManagerWithConn(conn, nil).EnsureTopics(context.Background(), topics))
	assert.Len(t, conn.created, 3)
}

func TestEventEnvelope(t *testing.T) {
	env, err := NewEventEnvelope(EventObservationBatch, map[string]int{"n": 2})
	require.NoError(t, err)
	_, err = uuid.Parse(env.EventID)
	require.NoError(t, err)

	msg, err := env.ToMessage(TopicObservationBatch, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, EventObservationBatch, msg.Headers["event_type"])

	back, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, back.EventID)

	var payload map[string]int
	require.NoError(t, back.DecodePayload(&payload))
	assert.Equal(t, 2, payload["n"])

	_, err = MessageToEventEnvelope(&Message{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeObservationDecode))
	_, err = MessageToEventEnvelope(&Message{Value: []byte("{")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeObservationDecode))
	assert.Error(t, (&EventEnvelope{}).DecodePayload(&payload))

	_, err = NewEventEnvelope("x", make(chan int))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestReportEventPublisher(t *testing.T) {
	pub := &recordingPublisher{}
	id := uuid.New()
	ev := report.CompletedEvent{ReportID: id, Industry: "hvac", FragmentationLevel: market.HighlyFragmented}

	require.NoError(t, NewReportEventPublisher(pub, "").PublishReportCompleted(context.Background(), ev))

	out := pub.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicReportCompleted, out[0].Topic)
	assert.Equal(t, []byte(id.String()), out[0].Key)

	env, err := MessageToEventEnvelope(&Message{Value: out[0].Value})
	require.NoError(t, err)
	assert.Equal(t, EventReportCompleted, env.EventType)
	var got report.CompletedEvent
	require.NoError(t, env.DecodePayload(&got))
	assert.Equal(t, id, got.ReportID)
	assert.Equal(t, market.HighlyFragmented, got.FragmentationLevel)
}

func TestBatchSubmitter(t *testing.T) {
	pub := &recordingPublisher{}
	id, err := NewBatchSubmitter(pub, "").SubmitBatch(context.Background(), "austin-tx:hvac", map[string]string{"location": "Austin, TX"})
	require.NoError(t, err)

	out := pub.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicObservationBatch, out[0].Topic)
	env, err := MessageToEventEnvelope(&Message{Value: out[0].Value})
	require.NoError(t, err)
	assert.Equal(t, id, env.EventID)
	assert.Equal(t, EventObservationBatch, env.EventType)

	_, err = NewBatchSubmitter(&recordingPublisher{err: stderrors.New("down")}, "t").SubmitBatch(context.Background(), "k", 1)
	assert.Error(t, err)
}

//Personal.AI order the ending

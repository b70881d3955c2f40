package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	doc := s.docs[0]
	s.docs = s.docs[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	return nil
}

type fakeProducer struct {
	topics   []string
	keys     []string
	payloads [][]byte
	headers  []map[string]string
	err      error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	p.headers = append(p.headers, headers)
	return nil
}

func doc(id, name string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Aggregate:  "b-1",
		Payload:    []byte(`{"booking_id":"b-1"}`),
		OccurredAt: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessOnce_PublishesCloudEvent(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{doc("evt-1", "booking.confirmed")}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.ProcessOnce(context.Background()))

	require.Len(t, producer.topics, 1)
	assert.Equal(t, "booking.events.v1", producer.topics[0])
	assert.Equal(t, []string{"b-1"}, producer.keys)
	assert.Equal(t, []string{"evt-1"}, store.sent)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(producer.payloads[0], &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "booking.confirmed.v1", envelope["type"])
	assert.Equal(t, "app://globalstay", envelope["source"])
	assert.NotEmpty(t, envelope["id"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "b-1", data["booking_id"])

	assert.Equal(t, "application/cloudevents+json", producer.headers[0]["content-type"])
}

func TestProcessOnce_TopicPrefix(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{doc("evt-1", "listing.rating_recalculated")}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "globalstay.", ID: "w-1"}

	require.NoError(t, w.ProcessOnce(context.Background()))
	assert.Equal(t, "globalstay.listing.events.v1", producer.topics[0])
}

func TestProcessOnce_EmptyOutbox(t *testing.T) {
	store := &fakeStore{}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.ProcessOnce(context.Background()))
	assert.Empty(t, producer.topics)
	assert.Empty(t, store.sent)
}

func TestProcessOnce_PublishFailureMarksFailed(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{doc("evt-1", "booking.canceled")}}
	producer := &fakeProducer{err: errors.New("broker unavailable")}
	w := &Worker{Store: store, Producer: producer, ID: "w-1", Backoff: []time.Duration{time.Second}}

	require.NoError(t, w.ProcessOnce(context.Background()))
	assert.Equal(t, []string{"evt-1"}, store.failed)
	assert.Empty(t, store.sent)
}

func TestProcessOnce_MalformedPayloadMarksFailed(t *testing.T) {
	bad := doc("evt-1", "booking.confirmed")
	bad.Payload = []byte("{not json")
	store := &fakeStore{docs: []*EventDocument{bad}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.ProcessOnce(context.Background()))
	assert.Equal(t, []string{"evt-1"}, store.failed)
	assert.Empty(t, producer.topics)
}

func TestRun_RequiresDependencies(t *testing.T) {
	w := &Worker{}
	assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}

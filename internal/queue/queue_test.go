package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) updates(t *testing.T) []StatusUpdate {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []StatusUpdate
	for _, p := range c.sent {
		var u StatusUpdate
		require.NoError(t, json.Unmarshal(p.msg.Body, &u))
		out = append(out, u)
	}
	return out
}

type fakeAcker struct {
	acked, nacked, rejected int
	requeue                 bool
}

func (a *fakeAcker) Ack(uint64, bool) error { a.acked++; return nil }

func (a *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcker) Reject(_ uint64, requeue bool) error {
	a.rejected++
	a.requeue = requeue
	return nil
}

func delivery(t *testing.T, acker amqp.Acknowledger, msg any) amqp.Delivery {
	t.Helper()
	body, ok := msg.([]byte)
	if !ok {
		var err error
		body, err = json.Marshal(msg)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: body}
}

func TestRoutingKey(t *testing.T) {
	id := uuid.MustParse("7f1c7f43-3c1b-4f8a-9a57-0c1f0f6f1a2b")
	assert.Equal(t, "run.7f1c7f43-3c1b-4f8a-9a57-0c1f0f6f1a2b", RoutingKey(id))
}

func TestNewPublisher_Defaults(t *testing.T) {
	p := newPublisher(&fakeChannel{}, "", "")
	assert.Equal(t, DefaultQueue, p.queue)
	assert.Equal(t, DefaultExchange, p.exchange)
	assert.NoError(t, p.Close())
}

func TestPublisher_Enqueue(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "runs", "updates")
	msg := RunMessage{RunID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}

	require.NoError(t, p.Enqueue(msg))
	require.Len(t, ch.sent, 1)

	sent := ch.sent[0]
	assert.Equal(t, "", sent.exchange)
	assert.Equal(t, "runs", sent.key)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)

	var got RunMessage
	require.NoError(t, json.Unmarshal(sent.msg.Body, &got))
	assert.Equal(t, msg, got)
}

func TestPublisher_PublishStatus(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "", "")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	runID := uuid.New()

	require.NoError(t, p.PublishStatus(StatusUpdate{RunID: runID, Status: StatusQueued, Message: "queued"}))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, DefaultExchange, ch.sent[0].exchange)
	assert.Equal(t, RoutingKey(runID), ch.sent[0].key)

	updates := ch.updates(t)
	assert.Equal(t, fixed, updates[0].Timestamp)
	assert.Equal(t, StatusQueued, updates[0].Status)
}

func TestPublisher_PublishError(t *testing.T) {
	p := newPublisher(&fakeChannel{err: errors.New("channel closed")}, "", "")
	assert.Error(t, p.Enqueue(RunMessage{}))
	assert.Error(t, p.PublishStatus(StatusUpdate{}))
}

func TestPool_Process(t *testing.T) {
	msg := RunMessage{RunID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}

	t.Run("successful run is acked", func(t *testing.T) {
		ch := &fakeChannel{}
		acker := &fakeAcker{}
		var got RunMessage
		pool := &Pool{Handler: func(_ context.Context, m RunMessage, notify func(StatusUpdate)) error {
			got = m
			notify(StatusUpdate{Status: StatusProcessing, Stage: "parse_candidate", Message: "started"})
			return nil
		}}

		pool.process(context.Background(), newPublisher(ch, "", ""), delivery(t, acker, msg), zap.NewNop())

		assert.Equal(t, msg, got)
		assert.Equal(t, 1, acker.acked)
		assert.Zero(t, acker.nacked)

		updates := ch.updates(t)
		require.Len(t, updates, 3)
		assert.Equal(t, StatusProcessing, updates[0].Status)
		assert.Equal(t, "parse_candidate", updates[1].Stage)
		assert.Equal(t, StatusCompleted, updates[2].Status)
		for _, u := range updates {
			assert.Equal(t, msg.RunID, u.RunID)
		}
	})

	t.Run("failed run is nacked without requeue", func(t *testing.T) {
		ch := &fakeChannel{}
		acker := &fakeAcker{requeue: true}
		pool := &Pool{Handler: func(context.Context, RunMessage, func(StatusUpdate)) error {
			return errors.New("job not found")
		}}

		pool.process(context.Background(), newPublisher(ch, "", ""), delivery(t, acker, msg), zap.NewNop())

		assert.Equal(t, 1, acker.nacked)
		assert.False(t, acker.requeue)
		updates := ch.updates(t)
		require.Len(t, updates, 2)
		assert.Equal(t, StatusFailed, updates[1].Status)
		assert.Equal(t, "job not found", updates[1].Message)
	})

	t.Run("malformed message is rejected", func(t *testing.T) {
		ch := &fakeChannel{}
		acker := &fakeAcker{}
		called := false
		pool := &Pool{Handler: func(context.Context, RunMessage, func(StatusUpdate)) error {
			called = true
			return nil
		}}

		pool.process(context.Background(), newPublisher(ch, "", ""), delivery(t, acker, []byte("{not json")), zap.NewNop())
		pool.process(context.Background(), newPublisher(ch, "", ""), delivery(t, acker, RunMessage{RunID: uuid.New()}), zap.NewNop())

		assert.False(t, called)
		assert.Equal(t, 2, acker.rejected)
		assert.Empty(t, ch.sent)
	})

	t.Run("status publish failure does not block ack", func(t *testing.T) {
		acker := &fakeAcker{}
		pool := &Pool{Handler: func(context.Context, RunMessage, func(StatusUpdate)) error { return nil }}

		pool.process(context.Background(), newPublisher(&fakeChannel{err: errors.New("closed")}, "", ""), delivery(t, acker, msg), zap.NewNop())
		assert.Equal(t, 1, acker.acked)
	})
}

func TestPool_RunRequiresHandler(t *testing.T) {
	err := (&Pool{}).Run(context.Background())
	assert.Error(t, err)
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler executes one run. notify publishes intermediate updates for the run.
type Handler func(ctx context.Context, msg RunMessage, notify func(StatusUpdate)) error

type statusPublisher interface {
	PublishStatus(update StatusUpdate) error
}

// Pool consumes run messages with a fixed number of workers. Each worker holds
// its own connection and processes one message at a time.
type Pool struct {
	URL      string
	Queue    string
	Exchange string
	Workers  int
	Handler  Handler
	Logger   *zap.Logger
}

// Run starts the workers and blocks until ctx is cancelled or a worker fails.
func (p *Pool) Run(ctx context.Context) error {
	if p.Handler == nil {
		return errors.New("queue: pool has no handler")
	}
	if p.Queue == "" {
		p.Queue = DefaultQueue
	}
	if p.Exchange == "" {
		p.Exchange = DefaultExchange
	}
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error { return p.worker(ctx, i+1) })
	}
	return g.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) error {
	log := p.logger().With(zap.Int("worker", id))

	conn, ch, err := connect(p.URL, p.Queue, p.Exchange)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	deliveries, err := ch.Consume(p.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("error consuming from %s: %w", p.Queue, err)
	}

	pub := newPublisher(ch, p.Queue, p.Exchange)
	log.Info("worker started", zap.String("queue", p.Queue))

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			p.process(ctx, pub, d, log)
		}
	}
}

// process runs one delivery. Malformed messages are rejected without requeue;
// failed runs are nacked without requeue since the failure is recorded on the run.
func (p *Pool) process(ctx context.Context, pub statusPublisher, d amqp.Delivery, log *zap.Logger) {
	var msg RunMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.CandidateID == uuid.Nil || msg.JobID == uuid.Nil {
		log.Error("discarding malformed run message", zap.Error(err), zap.ByteString("body", d.Body))
		_ = d.Reject(false)
		return
	}

	log = log.With(zap.String("run_id", msg.RunID.String()))
	notify := func(u StatusUpdate) {
		u.RunID = msg.RunID
		if err := pub.PublishStatus(u); err != nil {
			log.Warn("failed to publish status update", zap.Error(err))
		}
	}

	log.Info("processing run")
	notify(StatusUpdate{Status: StatusProcessing, Message: "pipeline started"})

	if err := p.Handler(ctx, msg, notify); err != nil {
		log.Error("run failed", zap.Error(err))
		notify(StatusUpdate{Status: StatusFailed, Message: err.Error()})
		_ = d.Nack(false, false)
		return
	}

	notify(StatusUpdate{Status: StatusCompleted, Message: "pipeline completed"})
	_ = d.Ack(false)
}

func (p *Pool) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Package telemetry ships rig orientation records to Kafka.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/teslashibe/go-camrig/pkg/rig"
)

// EventOrientation is the event type of every record.
const EventOrientation = "rig.orientation"

// DefaultInterval is the minimum spacing between published batches.
const DefaultInterval = 250 * time.Millisecond

const queueSize = 16

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Record is the value of each Kafka message. Messages are keyed by rig ID so
// one rig's records stay ordered within a partition.
type Record struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Timestamp time.Time    `json:"timestamp"`
	Source    string       `json:"source"`
	Snapshot  rig.Snapshot `json:"snapshot"`
}

// NewKafkaWriter returns a writer for topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithInterval sets the minimum spacing between batches.
func WithInterval(d time.Duration) Option {
	return func(p *Publisher) { p.interval = d }
}

// WithSource sets the Source field of records.
func WithSource(source string) Option {
	return func(p *Publisher) { p.source = source }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// Publisher implements rig.Publisher. Publish never blocks the tick loop:
// batches are queued and written by Run, and dropped when the queue is full.
type Publisher struct {
	w        Writer
	interval time.Duration
	source   string
	logger   *slog.Logger
	now      func() time.Time

	queue chan []rig.Snapshot

	mu   sync.Mutex
	last time.Time

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// New creates a publisher writing to w.
func New(w Writer, opts ...Option) *Publisher {
	p := &Publisher{
		w:        w,
		interval: DefaultInterval,
		source:   "camrigd",
		logger:   slog.Default(),
		now:      time.Now,
		queue:    make(chan []rig.Snapshot, queueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "telemetry")
	return p
}

// Publish queues a batch if the interval has elapsed.
func (p *Publisher) Publish(snaps []rig.Snapshot) {
	if len(snaps) == 0 {
		return
	}
	now := p.now()
	p.mu.Lock()
	if p.interval > 0 && !p.last.IsZero() && now.Sub(p.last) < p.interval {
		p.mu.Unlock()
		return
	}
	p.last = now
	p.mu.Unlock()

	select {
	case p.queue <- snaps:
	default:
		if p.dropped.Add(1)%100 == 1 {
			p.logger.Warn("telemetry queue full, dropping batch", "dropped", p.dropped.Load())
		}
	}
}

// Run writes queued batches until ctx is done, then closes the writer.
func (p *Publisher) Run(ctx context.Context) error {
	defer func() {
		if err := p.w.Close(); err != nil {
			p.logger.Warn("close writer", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snaps := <-p.queue:
			if err := p.write(ctx, snaps); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Warn("telemetry write failed", "error", err, "records", len(snaps))
			}
		}
	}
}

func (p *Publisher) write(ctx context.Context, snaps []rig.Snapshot) error {
	msgs := make([]kafka.Message, 0, len(snaps))
	ts := p.now().UTC()
	for _, s := range snaps {
		value, err := json.Marshal(Record{
			EventID:   uuid.NewString(),
			EventType: EventOrientation,
			Timestamp: ts,
			Source:    p.source,
			Snapshot:  s,
		})
		if err != nil {
			return fmt.Errorf("marshal %s: %w", s.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(s.ID), Value: value})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	p.sent.Add(uint64(len(msgs)))
	return nil
}

// Sent returns the number of records written.
func (p *Publisher) Sent() uint64 { return p.sent.Load() }

// Dropped returns the number of batches dropped on a full queue.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

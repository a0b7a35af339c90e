// Package audit publishes admin mutations as JSON events on a Kafka topic.
// Without brokers the events go to the log instead.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/worker"
)

// MessageWriter is the producer side of *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Submitter interface {
	Submit(worker.Task) error
}

// Store persists events, e.g. postgres.AuditLogs.
type Store interface {
	Insert(ctx context.Context, ev models.AuditEvent) error
}

type Recorder struct {
	w     MessageWriter
	store Store
	pool  Submitter
	log   *zap.Logger
	now   func() time.Time
}

// NewWriter builds a Kafka writer for the given brokers.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// New returns a Recorder. w may be nil; with neither a writer nor a store
// events are only logged.
func New(w MessageWriter, pool Submitter, log *zap.Logger) *Recorder {
	return &Recorder{w: w, pool: pool, log: log.Named("audit"), now: time.Now}
}

// WithStore also persists every event to s.
func (r *Recorder) WithStore(s Store) *Recorder {
	r.store = s
	return r
}

// Record stamps ev and publishes it in the background, keyed by entity so
// events for one entity stay ordered.
func (r *Recorder) Record(ev models.AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = r.now().UTC()
	}
	if r.w == nil && r.store == nil {
		r.logEvent(ev)
		return
	}
	if err := r.pool.Submit(func(ctx context.Context) { r.Publish(ctx, ev) }); err != nil {
		r.logEvent(ev)
	}
}

// Publish writes ev synchronously to every sink. An event no sink accepted
// is logged instead.
func (r *Recorder) Publish(ctx context.Context, ev models.AuditEvent) {
	delivered := false
	if r.store != nil {
		if err := r.store.Insert(ctx, ev); err != nil {
			r.log.Warn("store audit event failed", zap.String("id", ev.ID), zap.Error(err))
		} else {
			delivered = true
		}
	}
	if r.w != nil {
		b, err := json.Marshal(ev)
		if err != nil {
			r.log.Error("marshal audit event", zap.Error(err))
			return
		}
		msg := kafka.Message{Key: []byte(ev.EntityType + ":" + ev.EntityID), Value: b, Time: ev.CreatedAt}
		if err := r.w.WriteMessages(ctx, msg); err != nil {
			r.log.Warn("publish audit event failed", zap.Error(err))
		} else {
			delivered = true
		}
	}
	if !delivered {
		r.logEvent(ev)
	}
}

func (r *Recorder) logEvent(ev models.AuditEvent) {
	r.log.Info("audit",
		zap.String("id", ev.ID),
		zap.String("actor_id", ev.ActorID),
		zap.String("action", ev.Action),
		zap.String("entity_type", ev.EntityType),
		zap.String("entity_id", ev.EntityID),
		zap.Any("details", ev.Details),
		zap.String("request_id", ev.RequestID),
	)
}

func (r *Recorder) Close() error {
	if r.w == nil {
		return nil
	}
	return r.w.Close()
}

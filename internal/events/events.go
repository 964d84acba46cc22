// Package events 把信号的写操作分发到外部：Kafka、审计文件、日志。
package events

import (
	"context"
	"time"

	"cryptosignals/internal/signal"
	"cryptosignals/pkg/kafka"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/recorder"
)

// Event 对外发布的生命周期事件
type Event struct {
	Kind       signal.ChangeKind `json:"kind"`
	Signal     signal.Signal     `json:"signal"`
	PreviousID string            `json:"previous_id,omitempty"` // edited 时被替换的旧 id
	Actor      string            `json:"actor,omitempty"`
	At         time.Time         `json:"at"`
}

func FromChange(c signal.Change) Event {
	e := Event{
		Kind:   c.Kind,
		Signal: c.Signal,
		Actor:  c.Actor,
		At:     c.At,
	}
	if c.Previous != nil {
		e.PreviousID = c.Previous.ID
	}
	return e
}

type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Fanout 实现 signal.Observer，依次发布到所有 sink。
// sink 出错只记录日志，不影响写操作本身。
type Fanout struct {
	sinks   []Sink
	timeout time.Duration
}

var _ signal.Observer = (*Fanout)(nil)

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, timeout: 3 * time.Second}
}

func (f *Fanout) Observe(ctx context.Context, c signal.Change) {
	if len(f.sinks) == 0 {
		return
	}
	e := FromChange(c)
	// 请求结束不应打断事件发布
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	for _, s := range f.sinks {
		if err := s.Publish(pubCtx, e); err != nil {
			logger.Error("publish signal event failed",
				logger.Pair("sink", s.Name()),
				logger.Pair("kind", e.Kind),
				logger.Pair("signal_id", e.Signal.ID),
				logger.Pair("error", err.Error()))
		}
	}
}

// KafkaSink 以币种为 key 写入 Kafka
type KafkaSink struct {
	producer kafka.ProducerService
}

func NewKafkaSink(p kafka.ProducerService) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, e Event) error {
	return s.producer.Produce(ctx, []byte(e.Signal.Coin), e)
}

// AuditSink 追加写入 JSON lines 审计文件
type AuditSink struct {
	rec *recorder.JSONFileRecorder
}

func NewAuditSink(rec *recorder.JSONFileRecorder) *AuditSink {
	return &AuditSink{rec: rec}
}

func (s *AuditSink) Name() string { return "audit" }

func (s *AuditSink) Publish(_ context.Context, e Event) error {
	return s.rec.Record(e)
}

type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(_ context.Context, e Event) error {
	logger.Info("signal "+string(e.Kind),
		logger.Pair("signal_id", e.Signal.ID),
		logger.Pair("coin", e.Signal.Coin),
		logger.Pair("status", e.Signal.Status),
		logger.Pair("actor", e.Actor))
	return nil
}

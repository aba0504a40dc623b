package relocate

import (
	"go.uber.org/zap"

	"launcher-core/logger"
)

// EventMoveComplete is the name of every relocation outcome event.
const EventMoveComplete = "move_complete"

// Status is the outcome of a relocation.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Event reports how a relocation ended.
type Event struct {
	Name        string `json:"-"`
	InstallID   string `json:"install_id"`
	InstallName string `json:"install_name"`
	InstallType Kind   `json:"install_type"`
	Status      Status `json:"status"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Error       string `json:"error,omitempty"`
}

// Sink receives relocation events. Emit is called from the relocation
// goroutine and must not block for long.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// ChannelSink delivers events on a buffered channel. Events are dropped when
// the buffer is full.
type ChannelSink chan Event

func NewChannelSink(size int) ChannelSink {
	return make(ChannelSink, size)
}

func (c ChannelSink) Emit(e Event) {
	select {
	case c <- e:
	default:
		logger.Log.Warnw("Dropping relocation event, channel full",
			zap.String("install_id", e.InstallID),
			zap.String("status", string(e.Status)),
		)
	}
}

// LogSink writes events to a logger.
type LogSink struct {
	Log *zap.SugaredLogger
}

func (s LogSink) Emit(e Event) {
	log := logger.OrNop(s.Log).With(
		zap.String("event", e.Name),
		zap.String("install_id", e.InstallID),
		zap.String("install_type", string(e.InstallType)),
		zap.String("source", e.Source),
		zap.String("destination", e.Destination),
	)
	switch e.Status {
	case StatusFailed:
		log.Errorw("Relocation failed", zap.String("error", e.Error))
	case StatusSkipped:
		log.Infow("Relocation skipped", zap.String("reason", e.Error))
	default:
		log.Infow("Relocation completed")
	}
}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives emitted events.
type Sink interface {
	Emit(Event)
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) { f(e) }

// Log is a Sink writing events to the logger at info level.
type Log struct {
	log *zap.Logger
}

// NewLog returns Log sink, nil logger discards events.
func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

// Emit implements Sink.
func (l *Log) Emit(e Event) {
	l.log.Info("event", zap.String("name", e.Event), zap.Stringer("event", e))
}

// Memory is a Sink keeping all events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (m *Memory) Emit(e Event) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// Events returns a copy of received events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Named returns received events with the given name.
func (m *Memory) Named(name string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []Event
	for _, e := range m.events {
		if e.Event == name {
			res = append(res, e)
		}
	}
	return res
}

// Reset drops all received events.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

type multi []Sink

// Multi returns Sink passing events to all sinks in order. Nil sinks are
// skipped.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

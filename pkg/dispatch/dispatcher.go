// Package dispatch delivers events from sources to handlers. Each source gets
// one delivery goroutine, so every handler sees the source's events in the
// order they were produced, and handlers registered on the same source run in
// registration order for each event.
package dispatch

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes one event. Handlers run on the source's delivery
// goroutine; a slow handler delays every handler behind it.
type Handler func(event any)

// Source is an ordered event stream. Producers call Push; the dispatcher
// drains the source and fans events out to its handlers.
type Source struct {
	events chan any
	logger zerolog.Logger

	mu       sync.Mutex
	handlers []Handler
	closed   bool
}

// NewSource creates a Source with the given buffer size.
func NewSource(bufferSize int, logger zerolog.Logger) *Source {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Source{
		events: make(chan any, bufferSize),
		logger: logger,
	}
}

// Push enqueues an event. When the buffer is full the event is dropped with a
// warning; Push never blocks the producer.
func (s *Source) Push(event any) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	select {
	case s.events <- event:
	default:
		s.logger.Warn().Msg("event source buffer full, dropping event")
	}
}

// Close stops the source. Events already buffered are still delivered.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// addHandler appends a handler, preserving registration order.
func (s *Source) addHandler(handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

func (s *Source) snapshotHandlers() []Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	handlers := make([]Handler, len(s.handlers))
	copy(handlers, s.handlers)
	return handlers
}

// Dispatcher runs the delivery goroutines. One dispatcher is shared per
// facade; sources are registered through Subscribe.
type Dispatcher struct {
	mu      sync.Mutex
	running map[*Source]struct{}
	wg      sync.WaitGroup
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{running: make(map[*Source]struct{})}
}

// Subscribe registers a handler on the source. The first handler for a source
// starts its delivery goroutine; later handlers join the same goroutine and
// receive subsequent events after the earlier handlers.
func (d *Dispatcher) Subscribe(source *Source, handler Handler) {
	source.addHandler(handler)

	d.mu.Lock()
	if _, ok := d.running[source]; ok {
		d.mu.Unlock()
		return
	}
	d.running[source] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for event := range source.events {
			for _, h := range source.snapshotHandlers() {
				h(event)
			}
		}
	}()
}

// Wait blocks until every delivery goroutine has drained its closed source.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

package binance

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"venuelink/pkg/dispatch"
)

// decodeFunc turns a raw channel frame into a typed event. A nil event with a
// nil error means the frame was filtered (e.g. an open kline).
type decodeFunc func(frame []byte) (any, error)

// multiplexer shares one websocket connection across every logical channel of
// a facade. The first subscription for a channel dials the connection (if
// needed), registers the venue subscription and starts the decode pump; later
// subscriptions for the same channel only attach another handler.
type multiplexer struct {
	stream     StreamTransport
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger

	mu        sync.Mutex
	sources   map[string]*dispatch.Source
	connected bool
}

func newMultiplexer(stream StreamTransport, dispatcher *dispatch.Dispatcher, logger zerolog.Logger) *multiplexer {
	return &multiplexer{
		stream:     stream,
		dispatcher: dispatcher,
		logger:     logger,
		sources:    make(map[string]*dispatch.Source),
	}
}

// subscribe attaches a handler to the channel's event source, creating the
// source and venue subscription on first use. Setup errors surface here,
// synchronously.
func (m *multiplexer) subscribe(ctx context.Context, channel string, decode decodeFunc, handler dispatch.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.sources[channel]
	if !ok {
		if !m.connected {
			if err := m.stream.Connect(ctx); err != nil {
				return err
			}
			m.connected = true
		}
		frames, err := m.stream.Subscribe(channel)
		if err != nil {
			return err
		}
		source = dispatch.NewSource(0, m.logger)
		m.sources[channel] = source
		go m.pump(channel, frames, decode, source)
	}

	m.dispatcher.Subscribe(source, handler)
	return nil
}

// pump decodes raw frames into events. Decode failures are logged and the
// frame skipped; the channel stays alive.
func (m *multiplexer) pump(channel string, frames <-chan []byte, decode decodeFunc, source *dispatch.Source) {
	for frame := range frames {
		event, err := decode(frame)
		if err != nil {
			m.logger.Error().Err(err).Str("channel", channel).Msg("dropping undecodable frame")
			continue
		}
		if event == nil {
			continue
		}
		source.Push(event)
	}
	source.Close()
}

// close shuts the websocket connection down; every source drains and closes.
func (m *multiplexer) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.stream.Close()
}

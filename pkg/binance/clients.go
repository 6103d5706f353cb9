package binance

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"venuelink/pkg/dispatch"
)

// RestTransport executes one REST call against the venue and returns the raw
// response body. Implementations map venue error envelopes to
// core.VenueRejection and network failures to core.TransportError, and never
// retry.
type RestTransport interface {
	Call(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error)
	Close() error
}

// Limiter gates outbound requests. Every REST call acquires from the limiter
// before touching the transport.
type Limiter interface {
	Wait(ctx context.Context) error
}

// StreamTransport is a combined-stream websocket connection. Subscribe
// registers a channel and returns the channel's frame stream; frames carry
// the venue payload with the combined-stream envelope already stripped.
type StreamTransport interface {
	Connect(ctx context.Context) error
	Subscribe(channel string) (<-chan []byte, error)
	Close() error
}

// options collects the optional collaborators for a facade.
type options struct {
	logger     zerolog.Logger
	limiter    Limiter
	dispatcher *dispatch.Dispatcher
	rest       RestTransport
	stream     StreamTransport
}

// Option configures a facade.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLimiter replaces the default token-bucket limiter.
func WithLimiter(limiter Limiter) Option {
	return func(o *options) { o.limiter = limiter }
}

// WithDispatcher sets the event dispatcher shared with other components. The
// default is a dispatcher private to the facade.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithRestTransport replaces the REST transport. Intended for tests.
func WithRestTransport(t RestTransport) Option {
	return func(o *options) { o.rest = t }
}

// WithStreamTransport replaces the websocket transport. Intended for tests.
func WithStreamTransport(t StreamTransport) Option {
	return func(o *options) { o.stream = t }
}

func defaultOptions() *options {
	return &options{logger: zerolog.Nop()}
}

package binance

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decEqual(t *testing.T, want string, got *apd.Decimal) {
	t.Helper()
	require.NotNil(t, got)
	require.Zero(t, dec(t, want).Cmp(got), "want %s, got %s", want, got.Text('f'))
}

// fakeRest is a scripted RestTransport. Responses are served per path in
// FIFO order; every call is recorded.
type fakeRest struct {
	mu        sync.Mutex
	responses map[string][][]byte
	calls     []restCall
}

type restCall struct {
	method string
	path   string
	params url.Values
	signed bool
}

func newFakeRest() *fakeRest {
	return &fakeRest{responses: make(map[string][][]byte)}
}

func (f *fakeRest) queue(path string, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = append(f.responses[path], []byte(body))
}

func (f *fakeRest) Call(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, restCall{method: method, path: path, params: params, signed: signed})
	queued := f.responses[path]
	if len(queued) == 0 {
		panic("no response queued for " + path)
	}
	body := queued[0]
	f.responses[path] = queued[1:]
	return body, nil
}

func (f *fakeRest) Close() error { return nil }

func (f *fakeRest) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeRest) lastCall() restCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// fakeLimiter counts acquisitions.
type fakeLimiter struct {
	mu    sync.Mutex
	waits int
}

func (f *fakeLimiter) Wait(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	return nil
}

func (f *fakeLimiter) waitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}

// fakeStream is an in-memory StreamTransport.
type fakeStream struct {
	mu        sync.Mutex
	connected int
	channels  map[string]chan []byte
}

func newFakeStream() *fakeStream {
	return &fakeStream{channels: make(map[string]chan []byte)}
}

func (f *fakeStream) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected++
	return nil
}

func (f *fakeStream) Subscribe(channel string) (<-chan []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channel]
	if !ok {
		ch = make(chan []byte, 64)
		f.channels[channel] = ch
	}
	return ch, nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		close(ch)
	}
	f.channels = make(map[string]chan []byte)
	return nil
}

func (f *fakeStream) push(t *testing.T, channel, frame string) {
	f.mu.Lock()
	ch, ok := f.channels[channel]
	f.mu.Unlock()
	require.True(t, ok, "no subscription for channel %s", channel)
	ch <- []byte(frame)
}

func (f *fakeStream) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStream) subscriptionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

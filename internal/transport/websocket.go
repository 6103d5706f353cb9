package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
)

// StreamConfig configures a StreamClient.
type StreamConfig struct {
	// URL is the combined-stream endpoint (e.g. "wss://host/stream").
	URL               string
	ReconnectEnabled  bool
	ReconnectBaseWait time.Duration
	ReconnectMaxWait  time.Duration
	PingInterval      time.Duration
	PongWait          time.Duration
	// BufferSize is the per-channel frame buffer. A full buffer drops the
	// frame rather than blocking the read loop.
	BufferSize int
}

// StreamClient maintains one websocket connection in combined-stream mode and
// routes incoming frames to per-channel subscriptions. Frames arrive wrapped
// as {"stream": <channel>, "data": <payload>}; only the payload is delivered.
type StreamClient struct {
	config  StreamConfig
	state   *connState
	conn    *gws.Conn
	handler *streamHandler
	logger  zerolog.Logger

	mu                sync.RWMutex
	subs              map[string]*streamSub
	connectedChan     chan struct{}
	stopChan          chan struct{}
	wg                sync.WaitGroup
	reconnectAttempts int
	requestID         atomic.Int64
}

type streamSub struct {
	channel string

	mu     sync.Mutex
	dataCh chan []byte
	closed bool
}

// deliver hands one frame to the subscriber. The sub's own lock serializes
// sends against close, so a concurrent Unsubscribe cannot close dataCh
// mid-send. Returns false when the buffer is full.
func (s *streamSub) deliver(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.dataCh <- data:
		return true
	default:
		return false
	}
}

func (s *streamSub) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.dataCh)
}

type streamHandler struct {
	client *StreamClient
}

// combinedFrame is the combined-stream envelope. Control frame replies carry
// no "stream" field and are ignored by routing.
type combinedFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// controlFrame is a stream management request (SUBSCRIBE, UNSUBSCRIBE).
type controlFrame struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// NewStreamClient creates a StreamClient for the given endpoint. The client
// starts disconnected; call Connect before subscribing, or rely on Subscribe
// queueing the channel for the next connect.
func NewStreamClient(config StreamConfig, logger zerolog.Logger) *StreamClient {
	if config.ReconnectBaseWait == 0 {
		config.ReconnectBaseWait = 1 * time.Second
	}
	if config.ReconnectMaxWait == 0 {
		config.ReconnectMaxWait = 30 * time.Second
	}
	if config.PingInterval == 0 {
		config.PingInterval = 3 * time.Minute
	}
	if config.PongWait == 0 {
		config.PongWait = 10 * time.Minute
	}
	if config.BufferSize == 0 {
		config.BufferSize = 256
	}

	client := &StreamClient{
		config:        config,
		state:         &connState{},
		subs:          make(map[string]*streamSub),
		connectedChan: make(chan struct{}),
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
	client.state.Store(StateDisconnected)
	client.handler = &streamHandler{client: client}
	return client
}

func (h *streamHandler) OnOpen(socket *gws.Conn) {
	h.client.state.Store(StateConnected)

	h.client.mu.Lock()
	h.client.reconnectAttempts = 0
	select {
	case <-h.client.connectedChan:
	default:
		close(h.client.connectedChan)
	}
	h.client.mu.Unlock()

	h.client.logger.Info().Str("url", h.client.config.URL).Msg("stream connected")

	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *streamHandler) OnClose(socket *gws.Conn, err error) {
	// StateClosed is terminal: a late close callback after Close must not
	// downgrade it or trigger a reconnect.
	if !h.client.state.CompareAndSwap(StateConnected, StateDisconnected) &&
		!h.client.state.CompareAndSwap(StateConnecting, StateDisconnected) {
		return
	}

	h.client.mu.Lock()
	h.client.connectedChan = make(chan struct{})
	h.client.mu.Unlock()

	h.client.logger.Warn().Err(err).Str("url", h.client.config.URL).Msg("stream disconnected")

	if h.client.config.ReconnectEnabled {
		select {
		case <-h.client.stopChan:
			return
		default:
			go h.client.attemptReconnect()
		}
	}
}

func (h *streamHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
	_ = socket.WritePong(payload)
}

func (h *streamHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *streamHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Bytes()
	if len(data) == 0 {
		return
	}
	h.client.route(data)
}

// route delivers one combined-stream frame to its channel subscription.
func (c *StreamClient) route(data []byte) {
	var frame combinedFrame
	if err := sonic.Unmarshal(data, &frame); err != nil || frame.Stream == "" {
		// Control frame reply or malformed frame.
		c.logger.Debug().Str("data", string(data)).Msg("unrouted stream frame")
		return
	}

	c.mu.RLock()
	sub, ok := c.subs[frame.Stream]
	c.mu.RUnlock()
	if !ok {
		return
	}

	if !sub.deliver(frame.Data) {
		c.logger.Warn().Str("channel", sub.channel).Msg("channel buffer full, dropping frame")
	}
}

// Connect establishes the websocket connection and resubscribes any channels
// registered before the connect.
func (c *StreamClient) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(StateDisconnected, StateConnecting) &&
		!c.state.CompareAndSwap(StateReconnecting, StateConnecting) {
		current := c.state.Load()
		if current == StateConnected {
			return nil
		}
		return fmt.Errorf("invalid state for connect: %s", current)
	}

	socket, _, err := gws.NewClient(c.handler, &gws.ClientOption{Addr: c.config.URL})
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("connect stream: %w", err)
	}

	c.mu.Lock()
	c.conn = socket
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		socket.ReadLoop()
	}()

	// OnClose replaces connectedChan under the lock; snapshot it first.
	c.mu.Lock()
	connected := c.connectedChan
	c.mu.Unlock()

	select {
	case <-connected:
		return c.resubscribeAll()
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		c.state.Store(StateDisconnected)
		return ctx.Err()
	case <-c.stopChan:
		_ = socket.NetConn().Close()
		c.state.Store(StateClosed)
		return fmt.Errorf("client stopped")
	}
}

// Subscribe registers a channel and returns its frame channel. Each channel
// has at most one subscription; a second Subscribe for the same channel
// returns the existing frame channel. The SUBSCRIBE control frame is sent
// immediately when connected, otherwise on the next connect.
func (c *StreamClient) Subscribe(channel string) (<-chan []byte, error) {
	c.mu.Lock()
	if sub, ok := c.subs[channel]; ok {
		c.mu.Unlock()
		return sub.dataCh, nil
	}
	sub := &streamSub{
		channel: channel,
		dataCh:  make(chan []byte, c.config.BufferSize),
	}
	c.subs[channel] = sub
	connected := c.state.Load() == StateConnected
	c.mu.Unlock()

	if connected {
		if err := c.sendControl("SUBSCRIBE", []string{channel}); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Str("channel", channel).Msg("subscribed")
	return sub.dataCh, nil
}

// Unsubscribe removes a channel subscription and closes its frame channel.
func (c *StreamClient) Unsubscribe(channel string) {
	c.mu.Lock()
	sub, ok := c.subs[channel]
	if ok {
		sub.close()
		delete(c.subs, channel)
	}
	connected := c.state.Load() == StateConnected
	c.mu.Unlock()

	if ok && connected {
		_ = c.sendControl("UNSUBSCRIBE", []string{channel})
	}

	c.logger.Debug().Str("channel", channel).Msg("unsubscribed")
}

// Subscriptions returns the currently registered channels.
func (c *StreamClient) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	channels := make([]string, 0, len(c.subs))
	for channel := range c.subs {
		channels = append(channels, channel)
	}
	return channels
}

// State returns the connection state.
func (c *StreamClient) State() ConnState {
	return c.state.Load()
}

// IsConnected reports whether the connection is established.
func (c *StreamClient) IsConnected() bool {
	return c.state.Load() == StateConnected
}

// Close permanently closes the connection and every subscription channel.
func (c *StreamClient) Close() error {
	if !c.state.CompareAndSwap(StateConnected, StateClosed) &&
		!c.state.CompareAndSwap(StateConnecting, StateClosed) &&
		!c.state.CompareAndSwap(StateReconnecting, StateClosed) &&
		!c.state.CompareAndSwap(StateDisconnected, StateClosed) {
		return nil
	}

	close(c.stopChan)

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.NetConn().Close()
	}
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = make(map[string]*streamSub)
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *StreamClient) sendControl(method string, channels []string) error {
	frame := controlFrame{
		Method: method,
		Params: channels,
		ID:     c.requestID.Add(1),
	}
	data, err := sonic.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal control frame: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.state.Load() != StateConnected {
		return fmt.Errorf("stream not connected")
	}
	return c.conn.WriteMessage(gws.OpcodeText, data)
}

func (c *StreamClient) resubscribeAll() error {
	channels := c.Subscriptions()
	if len(channels) == 0 {
		return nil
	}
	return c.sendControl("SUBSCRIBE", channels)
}

func (c *StreamClient) attemptReconnect() {
	if !c.state.CompareAndSwap(StateDisconnected, StateReconnecting) {
		return
	}

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		c.mu.Lock()
		attempts := c.reconnectAttempts
		c.reconnectAttempts++
		c.mu.Unlock()

		wait := min(c.config.ReconnectBaseWait*time.Duration(1<<uint(attempts)), c.config.ReconnectMaxWait)
		c.logger.Info().Dur("wait", wait).Int("attempt", attempts+1).Msg("reconnecting stream")

		select {
		case <-time.After(wait):
		case <-c.stopChan:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.Connect(ctx)
		cancel()
		if err != nil {
			c.logger.Error().Err(err).Int("attempt", attempts+1).Msg("reconnect failed")
			c.state.Store(StateReconnecting)
			continue
		}

		c.logger.Info().Msg("stream reconnected")
		return
	}
}

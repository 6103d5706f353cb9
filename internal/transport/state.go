package transport

import "sync/atomic"

// ConnState represents the lifecycle state of a websocket connection.
type ConnState int32

// Connection lifecycle states.
const (
	// StateDisconnected indicates the websocket is not connected.
	StateDisconnected ConnState = iota
	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting
	// StateConnected indicates an active connection.
	StateConnected
	// StateReconnecting indicates a reconnect attempt after a disconnect.
	StateReconnecting
	// StateClosed indicates the connection was permanently closed.
	StateClosed
)

// String returns the state name.
func (s ConnState) String() string {
	return [...]string{
		"disconnected",
		"connecting",
		"connected",
		"reconnecting",
		"closed",
	}[s]
}

// connState provides atomic access to a ConnState value.
type connState struct {
	state atomic.Int32
}

func (s *connState) Load() ConnState {
	return ConnState(s.state.Load())
}

func (s *connState) Store(state ConnState) {
	s.state.Store(int32(state))
}

func (s *connState) CompareAndSwap(old, new ConnState) bool {
	return s.state.CompareAndSwap(int32(old), int32(new))
}

package core

import "fmt"

// TransportError wraps a network or HTTP level failure. The request may not
// have reached the venue; callers decide whether to retry, this library never
// retries on its own.
type TransportError struct {
	// Op names the failed operation (e.g., "GET /api/v3/depth").
	Op string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError for the given operation.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// VenueRejection is a well-formed request rejected by exchange business
// rules. The venue code and message are carried verbatim.
type VenueRejection struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Code is the venue-defined error code.
	Code int
	// Message is the venue-defined error message.
	Message string
}

// Error implements the error interface.
func (e *VenueRejection) Error() string {
	return fmt.Sprintf("venue rejection (http %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// NewVenueRejection creates a VenueRejection with the venue code and message
// carried verbatim.
func NewVenueRejection(statusCode, code int, message string) *VenueRejection {
	return &VenueRejection{StatusCode: statusCode, Code: code, Message: message}
}

// DecodingError indicates a required field was missing or malformed in a
// venue payload. It is always fatal: it means the venue contract changed or
// there is a bug in this library.
type DecodingError struct {
	// Key is the payload key that was missing or malformed.
	Key string
	// Reason describes what went wrong.
	Reason string
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding %q: %s", e.Key, e.Reason)
}

// NewDecodingError creates a DecodingError for the given payload key.
func NewDecodingError(key, reason string) *DecodingError {
	return &DecodingError{Key: key, Reason: reason}
}

// ConfigurationError indicates invalid caller input, such as an unknown bar
// duration, an instrument filter matching zero or multiple symbols, or
// mutually exclusive order parameters both set. It is raised synchronously,
// before any I/O where feasible.
type ConfigurationError struct {
	// Message describes the invalid input.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Message
}

// NewConfigurationError creates a ConfigurationError with the given message.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

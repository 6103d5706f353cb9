// Package transport provides the HTTP and websocket transports used by the
// venue facades.
package transport

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"venuelink/internal/circuitbreaker"
	"venuelink/pkg/core"
)

// RestClient issues REST requests to the venue. Signed requests carry a
// millisecond timestamp and an HMAC-SHA256 signature over the query string.
// Venue business rejections are surfaced as core.VenueRejection with the
// venue code and message verbatim; network failures as core.TransportError.
type RestClient struct {
	client  *resty.Client
	creds   *core.Credentials
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// venueError is the venue's REST error envelope.
type venueError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// NewRestClient creates a RestClient for the given base URL. Credentials are
// optional; without them signed requests fail with a ConfigurationError. The
// breaker is optional.
func NewRestClient(cfg *core.Config, baseURL string, breaker *circuitbreaker.Breaker, logger zerolog.Logger) *RestClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(cfg.Timeout)

	if cfg.Credentials != nil {
		client.SetHeader("X-MBX-APIKEY", cfg.Credentials.APIKey)
	}

	return &RestClient{
		client:  client,
		creds:   cfg.Credentials,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

// Call executes one REST request and returns the raw response body. Params go
// in the query string; signed requests additionally get a timestamp and
// signature appended. Call never retries.
func (c *RestClient) Call(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	op := method + " " + path

	if c.breaker != nil && !c.breaker.Allow() {
		return nil, core.NewTransportError(op, fmt.Errorf("circuit breaker open"))
	}

	query := ""
	if params != nil {
		query = params.Encode()
	}
	if signed {
		if c.creds == nil {
			return nil, core.NewConfigurationError("signed request %s requires credentials", op)
		}
		ts := "timestamp=" + strconv.FormatInt(c.now().UnixMilli(), 10)
		if query == "" {
			query = ts
		} else {
			query += "&" + ts
		}
		query += "&signature=" + c.sign(query)
	}

	req := c.client.R().SetContext(ctx)
	if query != "" {
		req.SetQueryString(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if c.breaker != nil {
			c.breaker.Record(false)
		}
		c.logger.Error().Err(err).Str("op", op).Msg("http request failed")
		return nil, core.NewTransportError(op, err)
	}

	body := resp.Bytes()
	status := resp.StatusCode()

	c.logger.Debug().
		Str("op", op).
		Int("status", status).
		Int("size", len(body)).
		Msg("http response")

	if status >= http.StatusBadRequest {
		// 4xx means the venue is reachable and answered; only server errors
		// count against the breaker.
		if c.breaker != nil {
			c.breaker.Record(status < http.StatusInternalServerError)
		}
		var ve venueError
		if err := sonic.Unmarshal(body, &ve); err == nil && ve.Msg != "" {
			return nil, core.NewVenueRejection(status, ve.Code, ve.Msg)
		}
		return nil, core.NewVenueRejection(status, 0, string(body))
	}

	if c.breaker != nil {
		c.breaker.Record(true)
	}
	return body, nil
}

// Close releases the underlying HTTP client resources.
func (c *RestClient) Close() error {
	return c.client.Close()
}

func (c *RestClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.creds.APISecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

package transport

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuelink/internal/circuitbreaker"
	"venuelink/pkg/core"
)

func testConfig(creds *core.Credentials) *core.Config {
	cfg := core.DefaultConfig()
	cfg.Credentials = creds
	return cfg
}

func TestCallReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/time", r.URL.Path)
		w.Write([]byte(`{"serverTime":1700000000000}`))
	}))
	defer srv.Close()

	c := NewRestClient(testConfig(nil), srv.URL, nil, zerolog.Nop())
	defer c.Close()

	body, err := c.Call(context.Background(), "GET", "/api/v3/time", nil, false)
	require.NoError(t, err)
	assert.Contains(t, string(body), "serverTime")
}

func TestCallVenueRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	}))
	defer srv.Close()

	c := NewRestClient(testConfig(nil), srv.URL, nil, zerolog.Nop())
	defer c.Close()

	_, err := c.Call(context.Background(), "POST", "/api/v3/order", nil, false)
	require.Error(t, err)

	var rejection *core.VenueRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusBadRequest, rejection.StatusCode)
	assert.Equal(t, -2010, rejection.Code)
	assert.Equal(t, "Account has insufficient balance for requested action.", rejection.Message)
}

func TestCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewRestClient(testConfig(nil), srv.URL, nil, zerolog.Nop())
	defer c.Close()

	_, err := c.Call(context.Background(), "GET", "/api/v3/time", nil, false)
	require.Error(t, err)

	var transportErr *core.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestCallSigning(t *testing.T) {
	creds := &core.Credentials{APIKey: "test-key", APISecret: "test-secret"}

	var gotQuery, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("X-MBX-APIKEY")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewRestClient(testConfig(creds), srv.URL, nil, zerolog.Nop())
	defer c.Close()
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	params := url.Values{"symbol": {"BTCUSDT"}}
	_, err := c.Call(context.Background(), "GET", "/api/v3/account", params, true)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Contains(t, gotQuery, "timestamp=1700000000000")

	// Signature covers everything before the signature parameter.
	idx := strings.Index(gotQuery, "&signature=")
	require.Greater(t, idx, 0)
	payload := gotQuery[:idx]
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(payload))
	want := hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, payload+"&signature="+want, gotQuery)
}

func TestCallSignedWithoutCredentials(t *testing.T) {
	c := NewRestClient(testConfig(nil), "http://localhost:0", nil, zerolog.Nop())
	defer c.Close()

	_, err := c.Call(context.Background(), "GET", "/api/v3/account", nil, true)
	var confErr *core.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestCallBreakerOpensOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":-1000,"msg":"internal error"}`))
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailThreshold:    2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
	})
	c := NewRestClient(testConfig(nil), srv.URL, breaker, zerolog.Nop())
	defer c.Close()

	for i := 0; i < 2; i++ {
		_, err := c.Call(context.Background(), "GET", "/api/v3/time", nil, false)
		var rejection *core.VenueRejection
		require.ErrorAs(t, err, &rejection)
	}
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	_, err := c.Call(context.Background(), "GET", "/api/v3/time", nil, false)
	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestCallClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailThreshold:    2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
	})
	c := NewRestClient(testConfig(nil), srv.URL, breaker, zerolog.Nop())
	defer c.Close()

	for i := 0; i < 5; i++ {
		_, err := c.Call(context.Background(), "GET", "/api/v3/depth", nil, false)
		var rejection *core.VenueRejection
		require.ErrorAs(t, err, &rejection)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
}

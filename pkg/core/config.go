package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds API authentication credentials for the venue.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// APISecret is the private key used for signing requests.
	APISecret string `json:"api_secret"`
}

// Config contains the session settings shared by the spot and futures
// facades: networking, rate limiting and circuit breaking. Credentials are
// optional; without them only public endpoints can be used.
type Config struct {
	AccountType AccountType  `json:"account_type"`
	Testnet     bool         `json:"testnet"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for a single HTTP request.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	// RateLimitRequests requests are allowed per RateLimitPeriod. The limit
	// is shared by every request issued from one facade instance.
	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=1ms"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" validate:"min=0"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" validate:"min=0"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" validate:"min=0"`
}

// DefaultConfig returns a Config with sensible defaults: 10s timeout,
// 1200 requests per minute, circuit breaker disabled.
func DefaultConfig() *Config {
	return &Config{
		AccountType:       AccountSpot,
		Timeout:           10 * time.Second,
		RateLimitRequests: 1200,
		RateLimitPeriod:   time.Minute,

		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,
	}
}

var validate = validator.New()

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return NewConfigurationError("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return NewConfigurationError("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return NewConfigurationError("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithTestnet enables or disables testnet mode and returns the config for chaining.
func (c *Config) WithTestnet(testnet bool) *Config {
	c.Testnet = testnet
	return c
}

// WithRateLimit sets the shared rate limit and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

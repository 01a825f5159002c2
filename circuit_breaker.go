package httpmsg

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards fetches against one server address.
// *gobreaker.CircuitBreaker[*Result] satisfies it.
type CircuitBreaker interface {
	Execute(req func() (*Result, error)) (*Result, error)
	State() gobreaker.State
}

// BreakerConfig configures the per-address circuit breakers of a Client.
type BreakerConfig struct {
	// MaxRequests is the number of fetches let through while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// MinRequests is the number of fetches counted before the breaker may trip.
	// Zero means 3.
	MinRequests uint32

	// FailureRatio trips the breaker once failed/total reaches it.
	// Zero means 0.6.
	FailureRatio float64
}

// NewBreaker returns a function that creates one breaker per server address.
//
// A fetch counts as a failure when the server could not be reached or did
// not deliver a complete response. A fetch canceled by its own context is
// not held against the server.
func (c BreakerConfig) NewBreaker() func(serverAddr string) CircuitBreaker {
	minRequests := c.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := c.FailureRatio
	if ratio == 0 {
		ratio = 0.6
	}

	return func(serverAddr string) CircuitBreaker {
		return gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: c.MaxRequests,
			Interval:    c.Interval,
			Timeout:     c.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < minRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}
}

// NewCircuitBreakerConfig is a shorthand for BreakerConfig.NewBreaker with
// the default trip policy: at least 3 fetches, 60% of them failed.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) CircuitBreaker {
	return BreakerConfig{
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
	}.NewBreaker()
}

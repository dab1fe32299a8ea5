// Package circuitbreaker wraps gobreaker with the settings the outbound
// market-data clients share.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// Config controls how quickly a breaker trips and recovers.
type Config struct {
	// MaxRequests is how many calls pass through while half-open.
	MaxRequests uint32
	// Interval resets the rolling failure counts while closed.
	Interval time.Duration
	// Timeout is how long an open breaker waits before half-opening.
	Timeout time.Duration
	// FailureThreshold trips the breaker once MinRequests calls have been
	// observed and this share of them failed.
	FailureThreshold float64
	MinRequests      uint32
}

// Defaults suit scheduled reference-data fetches: a source failing most of
// a run's calls is skipped until well after the run finishes, and a single
// call tests it when the breaker half-opens.
func Defaults() Config {
	return Config{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// New builds a named breaker from the config.
func New(name string, cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
	})
}

package circuitbreaker

import (
	"errors"
	"time"
)

// State of a breaker
type State int32

const (
	// StateClosed calls pass through
	StateClosed State = iota
	// StateOpen calls fail fast with ErrCircuitOpen
	StateOpen
	// StateHalfOpen a limited number of probe calls pass through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config of one breaker
type Config struct {
	Name string
	// MaxFailures consecutive failures before the breaker opens (default: 5)
	MaxFailures int64
	// Timeout the breaker stays open before probing (default: 30s)
	Timeout time.Duration
	// HalfOpenRequests probe calls allowed while half-open (default: 1)
	HalfOpenRequests int64
	// IsFailure decides whether err counts against the backend. Nil counts every
	// error except context cancellation.
	IsFailure     func(err error) bool
	OnStateChange func(name string, from, to State)
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// Counts since the last state change
type Counts struct {
	Requests             int64 `json:"requests"`
	Failures             int64 `json:"failures"`
	ConsecutiveFailures  int64 `json:"consecutiveFailures"`
	ConsecutiveSuccesses int64 `json:"consecutiveSuccesses"`
}

var (
	// ErrCircuitOpen is returned without calling the backend
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests half-open probe budget exhausted
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

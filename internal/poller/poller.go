// Package poller drives the checkout wait loop as an explicit finite-state
// machine: Idle -> Checking -> {Pending -> Checking, Completed, Failed,
// TimedOut}. Cancellation and timeout are first-class transitions rather
// than side-effect flags.
package poller

import (
	"context"
	"fmt"
	"log"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateChecking
	StatePending
	StateCompleted
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateChecking:
		return "CHECKING"
	case StatePending:
		return "PENDING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state halts polling.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

// CheckStatus is one observation of the order.
type CheckStatus struct {
	Status   string
	Captured bool
}

func (cs *CheckStatus) done() bool {
	return cs.Status == "COMPLETED" || cs.Captured
}

// StatusError is an authoritative non-2xx answer from the status endpoint.
// It halts polling, unlike transient transport errors.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status check failed (code %d): %s", e.StatusCode, e.Message)
}

// Checker observes the current order status. Implementations return
// *StatusError for authoritative failures and plain errors for transient
// transport problems.
type Checker interface {
	Check(ctx context.Context, orderID string) (*CheckStatus, error)
}

const (
	DefaultInterval    = 3 * time.Second
	DefaultMaxAttempts = 100
)

type Poller struct {
	checker     Checker
	orderID     string
	interval    time.Duration
	maxAttempts int

	onTransition func(State)

	kick chan struct{}
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.maxAttempts = n }
}

// WithTransitionFunc registers a callback invoked on every state change.
func WithTransitionFunc(fn func(State)) Option {
	return func(p *Poller) { p.onTransition = fn }
}

func New(checker Checker, orderID string, opts ...Option) *Poller {
	p := &Poller{
		checker:     checker,
		orderID:     orderID,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		kick:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckNow requests an immediate re-check, skipping the remainder of the
// current wait interval. Safe to call from any goroutine.
func (p *Poller) CheckNow() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until a terminal state is reached or ctx is cancelled. The
// first check happens immediately. On cancellation the last observed state
// is returned together with ctx.Err().
func (p *Poller) Run(ctx context.Context) (State, error) {
	state := StateIdle
	transition := func(next State) {
		state = next
		if p.onTransition != nil {
			p.onTransition(next)
		}
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempts := 0; ; {
		transition(StateChecking)
		attempts++

		status, err := p.checker.Check(ctx, p.orderID)
		switch {
		case err != nil:
			if _, ok := err.(*StatusError); ok {
				// Authoritative failure: halt, no further requests.
				transition(StateFailed)
				return state, err
			}
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			// Transient network error: log and keep polling.
			log.Printf("status check for %s: %v", p.orderID, err)
		case status.done():
			transition(StateCompleted)
			return state, nil
		}

		if attempts >= p.maxAttempts {
			transition(StateTimedOut)
			return state, nil
		}
		transition(StatePending)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.interval)

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-timer.C:
		case <-p.kick:
		}
	}
}

// Package circuitbreaker keeps failing model providers out of the chat
// fallback rotation. Each provider gets its own Breaker; a provider that
// keeps erroring is skipped for a cooldown period instead of adding its
// timeout to every request.
//
// State transitions:
//
//	Closed  → Open      after FailureThreshold consecutive failures
//	Open    → HalfOpen  once the cooldown elapses
//	HalfOpen → Closed   after SuccessThreshold consecutive successes
//	HalfOpen → Open     on any failure
package circuitbreaker

import (
	"sync"
	"time"
)

// State is the breaker's position in the recovery cycle.
type State int

const (
	// StateClosed lets calls through; the provider is healthy.
	StateClosed State = iota
	// StateOpen rejects calls; the provider is cooling down.
	StateOpen
	// StateHalfOpen lets trial calls through to probe recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Defaults applied by New for zero or negative settings.
const (
	DefaultFailureThreshold = 3
	DefaultSuccessThreshold = 1
	DefaultCooldown         = 30 * time.Second
)

// Breaker guards a single downstream provider. The zero value is not usable;
// construct with New.
type Breaker struct {
	mu               sync.Mutex
	state            State
	streak           int // consecutive failures when closed, successes when half-open
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	reopenAt         time.Time
}

// New creates a Breaker, substituting defaults for non-positive settings.
func New(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if successThreshold <= 0 {
		successThreshold = DefaultSuccessThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
	}
}

// current must be called with b.mu held.
func (b *Breaker) current() State {
	if b.state == StateOpen && !time.Now().Before(b.reopenAt) {
		b.state = StateHalfOpen
		b.streak = 0
	}
	return b.state
}

// State reports the breaker's state, moving Open to HalfOpen when the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Allow reports whether a call should proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current() != StateOpen
}

// RecordSuccess feeds a successful call back into the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case StateClosed:
		b.streak = 0
	case StateHalfOpen:
		b.streak++
		if b.streak >= b.successThreshold {
			b.state = StateClosed
			b.streak = 0
		}
	}
}

// RecordFailure feeds a failed call back into the breaker.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case StateClosed:
		b.streak++
		if b.streak >= b.failureThreshold {
			b.state = StateOpen
			b.reopenAt = time.Now().Add(b.cooldown)
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.streak = 0
		b.reopenAt = time.Now().Add(b.cooldown)
	}
}

// Set hands out one Breaker per key, creating them on demand with shared
// settings. Used to track each configured provider independently.
type Set struct {
	mu               sync.Mutex
	breakers         map[string]*Breaker
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
}

// NewSet creates a Set whose breakers share the given settings.
func NewSet(failureThreshold, successThreshold int, cooldown time.Duration) *Set {
	return &Set{
		breakers:         make(map[string]*Breaker),
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
	}
}

// Get returns the breaker for key, creating it if needed.
func (s *Set) Get(key string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[key]
	if !ok {
		b = New(s.failureThreshold, s.successThreshold, s.cooldown)
		s.breakers[key] = b
	}
	return b
}

// States snapshots every tracked breaker, keyed by provider.
func (s *Set) States() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.breakers))
	for key, b := range s.breakers {
		out[key] = b.State().String()
	}
	return out
}

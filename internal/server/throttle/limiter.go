package throttle

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/cms/internal/clock"
)

// Decision is the outcome of a check.
type Decision struct {
	Allowed    bool
	Scope      Scope
	Count      int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds is RetryAfter rounded up to whole seconds, never
// negative.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// Observer is told about every charged decision.
type Observer func(scope Scope, allowed bool)

// Option configures a Limiter.
type Option func(*Limiter)

// WithObserver registers fn to be called after each charged check.
func WithObserver(fn Observer) Option {
	return func(l *Limiter) { l.observe = fn }
}

// WithRates replaces the configured per-scope budgets.
func WithRates(rates map[Scope]Rate) Option {
	return func(l *Limiter) { l.rates = rates }
}

// Limiter decides allow or deny for (scope, key) pairs. Every charged
// check counts, allowed or not, and is never refunded.
type Limiter struct {
	store   Store
	clock   clock.Clock
	rates   map[Scope]Rate
	observe Observer
}

// NewLimiter constructs a Limiter over store using DefaultRates unless
// overridden.
func NewLimiter(store Store, c clock.Clock, opts ...Option) *Limiter {
	l := &Limiter{store: store, clock: c, rates: DefaultRates()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Rate returns the configured budget for scope.
func (l *Limiter) Rate(scope Scope) (Rate, bool) {
	r, ok := l.rates[scope]
	return r, ok
}

// Check charges one request against scope's configured rate for key.
// Scopes without a configured rate always allow.
func (l *Limiter) Check(ctx context.Context, scope Scope, key string) (Decision, error) {
	rate, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true, Scope: scope}, nil
	}
	return l.CheckRate(ctx, scope, key, rate)
}

// CheckRate charges one request for key in scope against an explicit rate.
func (l *Limiter) CheckRate(ctx context.Context, scope Scope, key string, rate Rate) (Decision, error) {
	if err := validate(rate); err != nil {
		return Decision{}, err
	}
	now := l.clock.Now()
	w, err := l.store.Increment(ctx, storeKey(scope, key), now, rate.Window)
	if err != nil {
		return Decision{}, err
	}
	d := decide(scope, rate, w, now)
	if l.observe != nil {
		l.observe(scope, d.Allowed)
	}
	return d, nil
}

// Peek reports what the next check would see without charging it. Count
// is the number already spent in the current window.
func (l *Limiter) Peek(ctx context.Context, scope Scope, key string) (Decision, error) {
	rate, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true, Scope: scope}, nil
	}
	now := l.clock.Now()
	w, err := l.store.Get(ctx, storeKey(scope, key), now, rate.Window)
	if err != nil {
		return Decision{}, err
	}
	next := w
	next.Count++
	d := decide(scope, rate, next, now)
	d.Count = w.Count
	return d, nil
}

// Reset forgets the counter for key in scope.
func (l *Limiter) Reset(ctx context.Context, scope Scope, key string) error {
	return l.store.Reset(ctx, storeKey(scope, key))
}

func decide(scope Scope, rate Rate, w Window, now time.Time) Decision {
	d := Decision{
		Allowed: w.Count <= rate.Limit,
		Scope:   scope,
		Count:   w.Count,
		Limit:   rate.Limit,
		ResetAt: w.End(rate.Window),
	}
	if !d.Allowed {
		d.RetryAfter = max(d.ResetAt.Sub(now), 0)
	}
	return d
}

func validate(rate Rate) error {
	if rate.Limit <= 0 || rate.Window <= 0 {
		return fmt.Errorf("invalid rate %d per %s", rate.Limit, rate.Window)
	}
	return nil
}

// storeKey keeps scopes apart even when keys collide.
func storeKey(scope Scope, key string) string {
	return string(scope) + ":" + key
}

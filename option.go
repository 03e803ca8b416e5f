package guard

import (
	"time"

	"github.com/efritz/glock"
	"go.uber.org/zap"
)

type config struct {
	threshold int
	timeout   time.Duration
	condition Condition
	clock     glock.Clock
	logger    *zap.Logger

	onStateChange OnStateChangeFunc
	onCall        OnCallFunc
	onReject      OnRejectFunc
}

// Option configures a Guard.
type Option func(*config)

// WithThreshold sets the consecutive failures required to trip the guard
// open. Values below 1 are ignored. Default is 5.
func WithThreshold(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.threshold = n
		}
	}
}

// WithTimeout sets how long the guard stays open before the next call is
// allowed through as a probe. Non-positive values are ignored. Default is
// 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger the guard reports to. Without one the guard
// is silent; behavior is identical either way.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clock glock.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// If sets the condition that determines whether an error counts as a
// failure. By default, any non-nil error is a failure. Cancellation is
// classified before the condition runs and never reaches it.
func If(cond Condition) Option {
	return func(c *config) {
		c.condition = cond
	}
}

// IfNot sets a condition where matching errors are NOT counted as failures.
// This is equivalent to If(Not(cond)).
func IfNot(cond Condition) Option {
	return If(Not(cond))
}

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// OnStateChange sets a hook called when the guard changes state.
func OnStateChange(fn OnStateChangeFunc) Option {
	return func(c *config) {
		c.onStateChange = fn
	}
}

// OnCall sets a hook called after each invocation of the protected
// operation. It does not fire for rejected calls; see OnReject.
func OnCall(fn OnCallFunc) Option {
	return func(c *config) {
		c.onCall = fn
	}
}

// OnReject sets a hook called when a call is rejected because the guard
// is open.
func OnReject(fn OnRejectFunc) Option {
	return func(c *config) {
		c.onReject = fn
	}
}

// Package guard implements the circuit breaker pattern for calls to
// unreliable dependencies.
//
// guard protects callers from cascading failures by:
//
//   - Tracking Failures: Consecutive errors trip the guard open
//   - Fast Rejection: Open guards reject calls immediately with ErrOpen
//   - Single Probe: After a cooldown, exactly one trial call tests recovery
//   - Observability: zap logging, lifecycle hooks, and a state-change channel
//
// # Quick Start
//
// Create a guard and protect calls:
//
//	g := guard.New("payment-service")
//
//	err := g.Do(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, amount)
//	})
//	if guard.IsOpen(err) {
//	    return handleFallback()
//	}
//
// For functions that return values, use the generic Run helper:
//
//	user, err := guard.Run(ctx, g, func(ctx context.Context) (*User, error) {
//	    return client.GetUser(ctx, id)
//	})
//
// # States
//
// The guard has three states:
//
//	Closed (normal):
//	    - Calls flow through to the protected function
//	    - Consecutive failures are counted
//	    - When failures reach the threshold, the guard opens
//
//	Open (tripped):
//	    - Calls are rejected immediately with ErrOpen
//	    - After the timeout, the next call runs as a probe
//
//	HalfOpen (probing):
//	    - Exactly one trial call is allowed through
//	    - Success closes the guard
//	    - A single failure reopens it, regardless of threshold
//
// # Configuration
//
// Configure the threshold and cooldown with options:
//
//	g := guard.New("api",
//	    guard.WithThreshold(3),              // Open after 3 consecutive failures
//	    guard.WithTimeout(10*time.Second),   // Wait 10s before probing
//	    guard.WithLogger(logger),            // Report to a zap logger
//	)
//
// Default values:
//
//   - Threshold: 5 consecutive failures
//   - Timeout: 30 seconds
//   - Logger: none (silent)
//
// # Serialized Execution
//
// A Guard holds one exclusive lock across the entirety of each call:
// state inspection, the protected function itself, and any resulting
// transition. At most one call executes through a given Guard at a time.
// This trades throughput for a strictly ordered state machine — two
// callers can never race to trip or reset the guard, and a second
// half-open probe is impossible by construction. Callers wanting
// concurrency across a slow dependency should shard it across several
// Guard instances.
//
// The State accessor is exempt: it reads an atomic snapshot and never
// blocks behind an in-flight call.
//
// # Cancellation
//
// Cancellation is classified by signal identity, not by error type:
//
//   - The caller's own cancellation (the error matches ctx.Err()) is
//     benign. It is logged, does not count as a failure, and Do returns
//     nil; Run returns the zero value.
//   - A cancellation propagated from some other context deeper in the
//     call graph is foreign. It surfaces unchanged and does not count as
//     a failure either.
//
// # Failure Conditions
//
// By default, any non-nil, non-cancellation error counts as a failure.
// Customize this with If:
//
//	g := guard.New("api",
//	    guard.If(func(err error) bool {
//	        return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
//	    }),
//	)
//
// Use IfNot to exclude certain errors, and Not to invert any condition.
// Excluded errors still propagate to the caller; they just never move
// the failure count toward the threshold.
//
// # Observability
//
// Three mechanisms, all optional, none affecting behavior:
//
//	g := guard.New("service",
//	    guard.WithLogger(logger),
//	    guard.OnStateChange(func(name string, from, to guard.State) {
//	        metrics.Gauge("guard.state", float64(to), "guard:"+name)
//	    }),
//	    guard.OnReject(func(name string) {
//	        metrics.Increment("guard.rejected", "guard:"+name)
//	    }),
//	)
//
// Or consume transitions as a channel:
//
//	for range g.Subscribe() {
//	    log.Println("now", g.State())
//	}
//
// Notifications fire once per actual transition and never for a no-op.
// Channel dispatch is bounded and non-blocking; a slow subscriber drops
// events rather than stalling the guard.
//
// # Fallback Pattern
//
// Use IsOpen to detect open guards and provide fallback behavior:
//
//	user, err := guard.Run(ctx, g, func(ctx context.Context) (*User, error) {
//	    return client.GetUser(ctx, id)
//	})
//	if guard.IsOpen(err) {
//	    return getCachedUser(id)  // Fallback to cache
//	}
//
// # Testing
//
// Inject a mock clock to control the cooldown in tests:
//
//	clock := glock.NewMockClock()
//	g := guard.New("test",
//	    guard.WithThreshold(1),
//	    guard.WithTimeout(30*time.Second),
//	    guard.WithClock(clock),
//	)
//
//	_ = g.Do(ctx, failing)
//	clock.Advance(31 * time.Second)
//	// next call probes
//
// # What guard Does Not Do
//
// guard does not retry, does not back off, and does not persist state
// across restarts. Retry policy layers outside the guard:
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//	    return g.Do(ctx, func(ctx context.Context) error {
//	        return client.Call(ctx)
//	    })
//	}, retry.If(func(err error) bool {
//	    return !guard.IsOpen(err)  // Don't retry if the guard is open
//	}))
package guard

package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efritz/glock"
	"go.uber.org/zap"
)

// State represents the guard state.
type State int32

const (
	// Closed is the normal operating state. Calls pass through.
	Closed State = iota

	// Open is the tripped state. Calls are rejected immediately.
	Open

	// HalfOpen is the recovery testing state. A single probe is allowed.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Func is the function signature for protected operations.
type Func func(ctx context.Context) error

// Condition determines whether an error should count as a failure.
type Condition func(error) bool

// OnStateChangeFunc is called when the guard changes state.
type OnStateChangeFunc func(name string, from, to State)

// OnCallFunc is called after each invocation of the protected operation.
type OnCallFunc func(name string, state State, err error)

// OnRejectFunc is called when a call is rejected because the guard is open.
type OnRejectFunc func(name string)

// ErrOpen is returned when the guard is open and rejecting calls.
var ErrOpen = errors.New("circuit open")

// IsOpen reports whether err is because the guard is open.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// Default values.
const (
	DefaultThreshold = 5
	DefaultTimeout   = 30 * time.Second
)

// Guard is a circuit breaker. Safe for concurrent use.
//
// A Guard serializes every execution end to end: state inspection, the
// protected call, and the resulting transition all happen under one
// exclusive lock. At most one call runs through a given Guard at a time,
// which is what makes the half-open single-probe guarantee hold.
type Guard struct {
	name string
	cfg  config

	mu sync.Mutex

	// Snapshots of the authoritative fields, maintained under mu but
	// readable without it. Diagnostic accessors never contend with an
	// in-flight call.
	state       atomic.Int32
	failures    atomic.Int32
	lastFailure atomic.Int64 // unix nanos, zero until the first failure

	subMu sync.Mutex
	subs  []chan StateChange
}

// New creates a Guard with the given options.
func New(name string, opts ...Option) *Guard {
	cfg := config{
		threshold: DefaultThreshold,
		timeout:   DefaultTimeout,
		condition: defaultCondition,
		clock:     glock.NewRealClock(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Guard{
		name: name,
		cfg:  cfg,
	}
}

// Do executes fn under the guard's protection.
//
// While closed, fn runs and its failures are counted; the guard trips
// open at the configured threshold. While open, calls fail fast with
// ErrOpen until the timeout elapses, after which the next call becomes
// the half-open probe. A cancellation that matches ctx's own signal is
// swallowed: it is logged, not counted, and Do returns nil.
func (g *Guard) Do(ctx context.Context, fn Func) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := State(g.state.Load())
	if state == Open {
		if g.cfg.clock.Now().Sub(g.lastFailureTime()) < g.cfg.timeout {
			g.cfg.logger.Info("rejecting call while open",
				zap.String("guard", g.name),
			)
			if g.cfg.onReject != nil {
				g.cfg.onReject(g.name)
			}
			return ErrOpen
		}

		// Cooldown elapsed: this call is the probe. The switch to
		// half-open is silent; only the probe's outcome is announced.
		state = HalfOpen
		g.state.Store(int32(HalfOpen))
	}

	switch state {
	case Closed:
		return g.closed(ctx, fn)
	case HalfOpen:
		return g.probe(ctx, fn)
	default:
		panic(fmt.Sprintf("guard: invalid state %d", state))
	}
}

// closed runs fn in the closed state, counting consecutive failures and
// tripping open at the threshold.
func (g *Guard) closed(ctx context.Context, fn Func) error {
	out, err := g.invoke(ctx, fn)
	switch out {
	case outcomeBenign:
		return nil
	case outcomeForeign:
		return err
	case outcomeSuccess:
		// err is non-nil here when the condition excluded it from
		// counting; it still surfaces to the caller.
		g.failures.Store(0)
		return err
	}

	failures := g.failures.Add(1)
	g.lastFailure.Store(g.cfg.clock.Now().UnixNano())
	g.cfg.logger.Error("operation failed",
		zap.String("guard", g.name),
		zap.Int32("failures", failures),
		zap.Error(err),
	)
	if int(failures) >= g.cfg.threshold {
		g.setState(Open)
	}
	return err
}

// probe runs fn as the single half-open trial call. Success closes the
// guard. A single failure reopens it, threshold notwithstanding.
func (g *Guard) probe(ctx context.Context, fn Func) error {
	out, err := g.invoke(ctx, fn)
	switch out {
	case outcomeBenign:
		return nil
	case outcomeForeign:
		return err
	case outcomeFailure:
		g.lastFailure.Store(g.cfg.clock.Now().UnixNano())
		g.cfg.logger.Error("probe failed",
			zap.String("guard", g.name),
			zap.Error(err),
		)
		g.setState(Open)
		return err
	}

	g.setState(Closed)
	return err
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeBenign
	outcomeForeign
)

// invoke runs fn and classifies the result. Cancellation attributable to
// the caller's own ctx is benign; cancellation carried up from some other
// signal is foreign and surfaces untouched. Everything else is success or
// failure per the configured condition.
func (g *Guard) invoke(ctx context.Context, fn Func) (outcome, error) {
	if ctx.Err() != nil {
		g.cfg.logger.Info("call canceled before invocation",
			zap.String("guard", g.name),
		)
		return outcomeBenign, nil
	}

	err := fn(ctx)

	if g.cfg.onCall != nil {
		g.cfg.onCall(g.name, State(g.state.Load()), err)
	}

	if err == nil {
		return outcomeSuccess, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if cause := ctx.Err(); cause != nil && errors.Is(err, cause) {
			g.cfg.logger.Info("operation canceled by caller",
				zap.String("guard", g.name),
			)
			return outcomeBenign, nil
		}
		return outcomeForeign, err
	}

	if !g.cfg.condition(err) {
		// Not a failure by the configured condition. The error still
		// surfaces, but for bookkeeping the call counts as a success.
		return outcomeSuccess, err
	}

	return outcomeFailure, err
}

// State returns the current state. The read takes no lock and may be
// stale relative to an in-flight call; it is diagnostic, not a gate.
func (g *Guard) State() State {
	state := State(g.state.Load())
	if state == Open {
		if last := g.lastFailure.Load(); last != 0 && g.cfg.clock.Now().Sub(time.Unix(0, last)) >= g.cfg.timeout {
			return HalfOpen
		}
	}
	return state
}

// Reset manually resets the guard to the closed state.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setState(Closed)
}

// Name returns the guard name.
func (g *Guard) Name() string {
	return g.name
}

// Failures returns the current consecutive-failure count.
func (g *Guard) Failures() int {
	return int(g.failures.Load())
}

// setState changes the state, announcing the change to the hook, the
// subscribers, and the log. A transition to the current state is a no-op
// and nothing fires.
func (g *Guard) setState(to State) {
	from := State(g.state.Load())
	if from == to {
		return
	}
	g.state.Store(int32(to))

	if to == Closed {
		g.failures.Store(0)
	}

	g.cfg.logger.Info("state changed",
		zap.String("guard", g.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	if g.cfg.onStateChange != nil {
		g.cfg.onStateChange(g.name, from, to)
	}

	g.publish(StateChange{Name: g.name, From: from, To: to})
}

func (g *Guard) lastFailureTime() time.Time {
	return time.Unix(0, g.lastFailure.Load())
}

func defaultCondition(err error) bool {
	return err != nil
}

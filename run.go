package guard

import "context"

// Run executes fn and returns its result under the guard's protection.
// This is the value-returning counterpart of Do; the two share one state
// machine and one protocol.
//
// Run returns the zero value of T on every non-success outcome: a
// dependency failure, an open-guard rejection, and a benign cancellation
// (which, as with Do, yields a nil error).
func Run[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var result T
	var fnErr error
	err := g.Do(ctx, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})
	if err != nil || fnErr != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

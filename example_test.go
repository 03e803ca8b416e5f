package guard_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bjaus/guard"
)

// ExampleNew demonstrates creating a guard with default settings.
func ExampleNew() {
	g := guard.New("my-service")

	err := g.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})

	fmt.Println("Error:", err)
	fmt.Println("State:", g.State())

	// Output:
	// Error: <nil>
	// State: closed
}

// ExampleNew_withOptions demonstrates creating a guard with custom settings.
func ExampleNew_withOptions() {
	g := guard.New("payment-service",
		guard.WithThreshold(3),
		guard.WithTimeout(10*time.Second),
	)

	fmt.Println("Name:", g.Name())
	fmt.Println("State:", g.State())

	// Output:
	// Name: payment-service
	// State: closed
}

// ExampleGuard_Do demonstrates basic usage.
func ExampleGuard_Do() {
	g := guard.New("api",
		guard.WithThreshold(2),
	)

	attempts := 0
	for loopi := 0; loopi < 5; loopi++ {
		err := g.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("service unavailable")
		})
		if guard.IsOpen(err) {
			fmt.Println("Guard is open, skipping call")
		}
	}

	fmt.Println("Attempts:", attempts)
	fmt.Println("State:", g.State())

	// Output:
	// Guard is open, skipping call
	// Guard is open, skipping call
	// Guard is open, skipping call
	// Attempts: 2
	// State: open
}

// ExampleRun demonstrates the generic helper for returning values.
func ExampleRun() {
	g := guard.New("user-service")

	user, err := guard.Run(context.Background(), g, func(ctx context.Context) (string, error) {
		return "john_doe", nil
	})

	fmt.Println("User:", user)
	fmt.Println("Error:", err)

	// Output:
	// User: john_doe
	// Error: <nil>
}

// ExampleIsOpen demonstrates checking if an error is due to an open guard.
func ExampleIsOpen() {
	g := guard.New("service",
		guard.WithThreshold(1),
	)

	_ = g.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	err := g.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})

	if guard.IsOpen(err) {
		fmt.Println("Guard is open, using fallback")
	}

	// Output:
	// Guard is open, using fallback
}

// ExampleGuard_Reset demonstrates manually resetting a guard.
func ExampleGuard_Reset() {
	g := guard.New("service",
		guard.WithThreshold(1),
	)

	_ = g.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	fmt.Println("Before reset:", g.State())

	g.Reset()

	fmt.Println("After reset:", g.State())

	// Output:
	// Before reset: open
	// After reset: closed
}

// ExampleIf demonstrates custom failure conditions.
func ExampleIf() {
	transient := errors.New("transient error")

	g := guard.New("api",
		guard.WithThreshold(2),
		guard.If(func(err error) bool {
			return errors.Is(err, transient)
		}),
	)

	for loopi := 0; loopi < 2; loopi++ {
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			return errors.New("permanent error")
		})
	}

	fmt.Println("After permanent errors:", g.State())

	for loopi := 0; loopi < 2; loopi++ {
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			return transient
		})
	}

	fmt.Println("After transient errors:", g.State())

	// Output:
	// After permanent errors: closed
	// After transient errors: open
}

// ExampleOnStateChange demonstrates the state change hook.
func ExampleOnStateChange() {
	g := guard.New("service",
		guard.WithThreshold(1),
		guard.OnStateChange(func(name string, from, to guard.State) {
			fmt.Printf("Guard %s: %s -> %s\n", name, from, to)
		}),
	)

	_ = g.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	// Output:
	// Guard service: closed -> open
}

// ExampleGuard_Subscribe demonstrates consuming transitions as a channel.
func ExampleGuard_Subscribe() {
	g := guard.New("service",
		guard.WithThreshold(1),
	)
	ch := g.Subscribe()

	_ = g.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	change := <-ch
	fmt.Printf("%s: %s -> %s\n", change.Name, change.From, change.To)

	// Output:
	// service: closed -> open
}

// Example_fallback demonstrates graceful degradation when the guard is open.
func Example_fallback() {
	g := guard.New("user-service",
		guard.WithThreshold(1),
	)

	getUser := func(ctx context.Context, _ int) (string, error) {
		user, err := guard.Run(ctx, g, func(ctx context.Context) (string, error) {
			return "", errors.New("service unavailable")
		})
		if guard.IsOpen(err) {
			return "guest", nil
		}
		if err != nil {
			return "", err
		}
		return user, nil
	}

	_, err1 := getUser(context.Background(), 1)
	user2, _ := getUser(context.Background(), 2)

	fmt.Println("User 1 error:", err1 != nil)
	fmt.Println("User 2:", user2)

	// Output:
	// User 1 error: true
	// User 2: guest
}

// ExampleState_String demonstrates state string representation.
func ExampleState_String() {
	fmt.Println(guard.Closed.String())
	fmt.Println(guard.Open.String())
	fmt.Println(guard.HalfOpen.String())

	// Output:
	// closed
	// open
	// half-open
}

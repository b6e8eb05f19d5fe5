// Package retry provides the bounded connect-with-retry supervisor shared by
// every service for attaching to Postgres and the broker at startup.
package retry

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Supervisor retries a dial function a fixed number of times with a fixed
// delay between attempts. It is a startup primitive, not a circuit breaker:
// there is no backoff growth and no open state. The caller decides what
// exhaustion means (every service treats it as fatal).
type Supervisor struct {
	MaxAttempts int
	Delay       time.Duration

	// Sleep is overridable in tests to avoid real waiting.
	Sleep func(time.Duration)
}

// New returns a Supervisor with the given attempt budget and delay.
func New(maxAttempts int, delay time.Duration) *Supervisor {
	return &Supervisor{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Sleep:       time.Sleep,
	}
}

// Connect calls dial until it succeeds or the attempt budget is exhausted.
// The name only appears in logs. Between attempts it sleeps for Delay; it
// never sleeps after the final attempt. A cancelled context stops the loop
// early and returns ctx.Err().
func (s *Supervisor) Connect(ctx context.Context, name string, dial func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = dial()
		if lastErr == nil {
			log.Printf("[retry] connected to %s", name)
			return nil
		}

		log.Printf("[retry] failed to connect to %s (attempt %d of %d): %v", name, attempt, s.MaxAttempts, lastErr)
		if attempt < s.MaxAttempts {
			s.Sleep(s.Delay)
		}
	}
	return fmt.Errorf("connect %s: exhausted %d attempts: %w", name, s.MaxAttempts, lastErr)
}

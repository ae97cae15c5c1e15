package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/scheduler"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 100ms)
	MaxInterval         time.Duration // Maximum retry interval (default 10s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 2min)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// CircuitBreakerRegistry manages one circuit breaker per task kind, so a
// misbehaving class of tasks (e.g. every shell command hitting a dead
// service) stops being retried without affecting other kinds.
type CircuitBreakerRegistry struct {
	mu       sync.Mutex
	breakers map[plan.TaskKind]*gobreaker.CircuitBreaker
}

// NewCircuitBreakerRegistry creates a new circuit breaker registry.
func NewCircuitBreakerRegistry() *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[plan.TaskKind]*gobreaker.CircuitBreaker),
	}
}

// Get returns the circuit breaker for the given task kind, creating it on
// first use.
func (r *CircuitBreakerRegistry) Get(kind plan.TaskKind) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[kind]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(kind),
		MaxRequests: 3,                // Test requests allowed in half-open state
		Interval:    0,                // Don't clear counts automatically
		Timeout:     30 * time.Second, // Stay open before testing recovery
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %q: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// User cancellation is not a task-kind failure
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return false
		},
	})

	r.breakers[kind] = cb
	return cb
}

// WrapExecutor composes retry and circuit-breaker protection around a task
// executor. The scheduler still sees a single executor invocation per
// task; the retries happen inside the composed executor, which is the
// caller's side of the contract.
func WrapExecutor(execute scheduler.TaskExecutor, registry *CircuitBreakerRegistry, retryCfg RetryConfig) scheduler.TaskExecutor {
	return func(ctx context.Context, t *plan.Task) (string, error) {
		var result string
		cb := registry.Get(t.Kind)

		operation := func() error {
			// Fail fast if the run was cancelled
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}

			out, err := cb.Execute(func() (interface{}, error) {
				return execute(ctx, t)
			})
			if err != nil {
				// Open circuit: retrying would just hammer the breaker
				if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
					return backoff.Permanent(err)
				}
				if ctx.Err() != nil {
					return backoff.Permanent(err)
				}
				return err
			}

			result = out.(string)
			return nil
		}

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = retryCfg.InitialInterval
		policy.MaxInterval = retryCfg.MaxInterval
		policy.MaxElapsedTime = retryCfg.MaxElapsedTime
		policy.Multiplier = retryCfg.Multiplier
		policy.RandomizationFactor = retryCfg.RandomizationFactor

		err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
		return result, err
	}
}

package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/planrun/planrun/internal/plan"
)

// fastRetryConfig keeps retry tests quick.
func fastRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     time.Millisecond,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      200 * time.Millisecond,
		Multiplier:          1.5,
		RandomizationFactor: 0,
	}
}

func TestWrapExecutorRetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32
	inner := func(ctx context.Context, task *plan.Task) (string, error) {
		if attempts.Add(1) < 3 {
			return "", errors.New("transient")
		}
		return "recovered", nil
	}

	execute := WrapExecutor(inner, NewCircuitBreakerRegistry(), fastRetryConfig())

	result, err := execute(context.Background(), &plan.Task{ID: "a", Kind: plan.KindGeneric})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" {
		t.Errorf("expected result 'recovered', got %q", result)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestWrapExecutorGivesUp(t *testing.T) {
	var attempts atomic.Int32
	inner := func(ctx context.Context, task *plan.Task) (string, error) {
		attempts.Add(1)
		return "", errors.New("permanent")
	}

	execute := WrapExecutor(inner, NewCircuitBreakerRegistry(), fastRetryConfig())

	_, err := execute(context.Background(), &plan.Task{ID: "a", Kind: plan.KindGeneric})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := attempts.Load(); got < 2 {
		t.Errorf("expected multiple attempts before giving up, got %d", got)
	}
}

func TestWrapExecutorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var attempts atomic.Int32
	inner := func(ctx context.Context, task *plan.Task) (string, error) {
		attempts.Add(1)
		return "", errors.New("should not retry")
	}

	execute := WrapExecutor(inner, NewCircuitBreakerRegistry(), fastRetryConfig())

	_, err := execute(ctx, &plan.Task{ID: "a", Kind: plan.KindGeneric})
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
	if got := attempts.Load(); got > 1 {
		t.Errorf("expected at most one attempt with cancelled context, got %d", got)
	}
}

func TestCircuitBreakerRegistryPerKind(t *testing.T) {
	registry := NewCircuitBreakerRegistry()

	generic := registry.Get(plan.KindGeneric)
	command := registry.Get(plan.KindCommand)

	if generic == command {
		t.Error("expected distinct breakers per task kind")
	}
	if registry.Get(plan.KindGeneric) != generic {
		t.Error("expected the same breaker on repeated lookup")
	}
}

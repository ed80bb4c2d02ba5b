package resilience

import (
	"errors"
	"testing"
	"time"
)

func newGroup(cfg CircuitBreakerConfig, names ...string) *FallbackGroup[string] {
	fg := NewFallbackGroup[string](FallbackConfig{CircuitBreaker: cfg})
	for _, n := range names {
		fg.Add(n, n)
	}
	return fg
}

func TestFallbackGroup_PrimarySuccess(t *testing.T) {
	fg := newGroup(CircuitBreakerConfig{MaxFailures: 3}, "primary", "secondary")

	var called string
	served, err := fg.Execute(func(v string) error {
		called = v
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != "primary" {
		t.Fatalf("called = %q, want primary", called)
	}
	if served != "primary" {
		t.Fatalf("served = %q, want primary", served)
	}
}

func TestFallbackGroup_PrimaryFailFallbackSuccess(t *testing.T) {
	fg := newGroup(CircuitBreakerConfig{MaxFailures: 3}, "primary", "secondary")

	served, err := fg.Execute(func(v string) error {
		if v == "primary" {
			return errTest
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if served != "secondary" {
		t.Fatalf("served = %q, want secondary", served)
	}
}

func TestFallbackGroup_AllFail(t *testing.T) {
	fg := newGroup(CircuitBreakerConfig{MaxFailures: 3}, "primary", "secondary")

	_, err := fg.Execute(func(v string) error {
		return errTest
	})
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroup_Empty(t *testing.T) {
	fg := NewFallbackGroup[string](FallbackConfig{})

	_, err := fg.Execute(func(string) error { return nil })
	if !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("err = %v, want ErrEmptyGroup", err)
	}
}

func TestFallbackGroup_Names(t *testing.T) {
	fg := newGroup(CircuitBreakerConfig{}, "a", "b", "c")
	names := fg.Names()
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Fatalf("Names() = %v, want [a b c]", names)
	}
	if fg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", fg.Len())
	}
}

func TestFallbackGroup_CircuitBreakerSkipsOpenProvider(t *testing.T) {
	fg := newGroup(CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	}, "primary", "secondary")

	// Fail the primary enough to open its breaker.
	for range 2 {
		_, _ = fg.Execute(func(v string) error {
			if v == "primary" {
				return errTest
			}
			return nil
		})
	}

	// The primary's breaker is now open so calls should go to secondary.
	served, err := fg.Execute(func(v string) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if served != "secondary" {
		t.Fatalf("served = %q, want secondary (primary circuit should be open)", served)
	}
}

func TestExecuteWithResult_Success(t *testing.T) {
	fg := NewFallbackGroup[int](FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fg.Add("ten", 10)
	fg.Add("twenty", 20)

	result, served, err := ExecuteWithResult(fg, func(v int) (string, error) {
		if v == 10 {
			return "from-ten", nil
		}
		return "from-twenty", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "from-ten" {
		t.Fatalf("result = %q, want from-ten", result)
	}
	if served != "ten" {
		t.Fatalf("served = %q, want ten", served)
	}
}

func TestExecuteWithResult_Failover(t *testing.T) {
	fg := NewFallbackGroup[int](FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fg.Add("ten", 10)
	fg.Add("twenty", 20)

	result, served, err := ExecuteWithResult(fg, func(v int) (string, error) {
		if v == 10 {
			return "", errTest
		}
		return "from-twenty", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "from-twenty" {
		t.Fatalf("result = %q, want from-twenty", result)
	}
	if served != "twenty" {
		t.Fatalf("served = %q, want twenty", served)
	}
}

func TestExecuteWithResult_AllFail(t *testing.T) {
	fg := NewFallbackGroup[int](FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fg.Add("ten", 10)

	_, _, err := ExecuteWithResult(fg, func(v int) (string, error) {
		return "", errTest
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

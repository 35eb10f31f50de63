package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/awmpietro/golang-case-classification/internal/ruleset"
)

func stubRuleSet() *ruleset.RuleSet {
	return ruleset.NewRuleSet("MEASLES", nil)
}

func TestInMemory_GetOrCompute_DeduplicatesConcurrentSameKey(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	fn := func() (*ruleset.RuleSet, error) {
		calls.Add(1)
		time.Sleep(30 * time.Millisecond)
		return stubRuleSet(), nil
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrCompute("same-key", fn)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected fn to run once, got %d", got)
	}
}

func TestInMemory_GetOrCompute_ReturnsCachedValue(t *testing.T) {
	c := NewInMemory(16)
	first, err := c.GetOrCompute("k", func() (*ruleset.RuleSet, error) { return stubRuleSet(), nil })
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GetOrCompute("k", func() (*ruleset.RuleSet, error) {
		t.Fatal("fn must not run for a cached key")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected the cached rule set to be returned")
	}
}

func TestInMemory_GetOrCompute_ErrorIsNotCached(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	_, err := c.GetOrCompute("k", func() (*ruleset.RuleSet, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	_, err = c.GetOrCompute("k", func() (*ruleset.RuleSet, error) {
		calls.Add(1)
		return stubRuleSet(), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected fn to run twice (error should not be cached), got %d", got)
	}
}

func TestInMemory_GetOrCompute_RespectsMaxItems(t *testing.T) {
	c := NewInMemory(1)
	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.GetOrCompute(k, func() (*ruleset.RuleSet, error) { return stubRuleSet(), nil }); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.Len(); got != 1 {
		t.Fatalf("expected 1 cached item, got %d", got)
	}
}

func TestInMemory_GetOrCompute_PanicDoesNotBlockWaiters(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.GetOrCompute("panic-key", func() (*ruleset.RuleSet, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				panic("boom")
			})
			errs <- err
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err == nil {
			t.Fatalf("expected panic converted into error")
		}
	}
	if got := calls.Load(); got < 1 || got > n {
		t.Fatalf("unexpected number of executions: %d", got)
	}
	if c.Len() != 0 {
		t.Fatalf("panicking computation must not be cached")
	}
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/golang-case-classification/internal/ruleset"
)

// InMemory caches rule sets compiled from ad-hoc DOT definitions, keyed by
// the hash of the source. Once max entries are held, new ones are computed
// but not stored.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*ruleset.RuleSet
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*ruleset.RuleSet, max),
	}
}

// GetOrCompute returns the cached rule set for dot, running fn once for
// concurrent callers of the same key. Errors are not cached and a panic in
// fn is returned as an error to every waiting caller.
func (c *InMemory) GetOrCompute(dot string, fn func() (*ruleset.RuleSet, error)) (*ruleset.RuleSet, error) {
	key := hash(dot)

	c.mu.RLock()
	if v, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if v, ok := c.items[key]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		rs, err := safeCompute(fn)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = rs
		}
		c.mu.Unlock()
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ruleset.RuleSet), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func safeCompute(fn func() (*ruleset.RuleSet, error)) (rs *ruleset.RuleSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			rs, err = nil, fmt.Errorf("rule compilation panicked: %v", r)
		}
	}()
	return fn()
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

package classification

import (
	"errors"
	"fmt"
)

// Criteria is a node of a classification rule tree: either a leaf predicate
// or a Threshold combinator. The set of implementations is closed to this
// package so Evaluate and Describe can switch over every variant.
//
// Criteria values are immutable once built and may be shared between rule
// sets and goroutines.
type Criteria interface {
	// SubCriteria returns the children in declared order; nil for leaves.
	SubCriteria() []Criteria
	criteria()
}

type RenderMode int

const (
	// RenderDefault renders only the "TWO OF" label; the parent lists the
	// children itself.
	RenderDefault RenderMode = iota
	// RenderBulleted renders the label followed by one bullet line per child.
	RenderBulleted
	// RenderCompact renders the children inline, "A, B OR C". Amount is 1.
	RenderCompact
)

func (m RenderMode) String() string {
	switch m {
	case RenderDefault:
		return "default"
	case RenderBulleted:
		return "bulleted"
	case RenderCompact:
		return "compact"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

var (
	ErrNoSubCriteria    = errors.New("threshold requires at least one sub criteria")
	ErrNilSubCriteria   = errors.New("threshold sub criteria must not be nil")
	ErrAmountOutOfRange = errors.New("required amount out of range")
	ErrCompactAmount    = errors.New("compact rendering requires an amount of 1")
	ErrUnknownMode      = errors.New("unknown render mode")
)

// Threshold is satisfied when at least Amount of its sub criteria are.
// AND is Amount == len(children), OR is Amount == 1. Build it with
// NewThreshold or a helper; the zero value matches nothing and does not
// describe.
type Threshold struct {
	amount   int
	children []Criteria
	mode     RenderMode
}

func NewThreshold(amount int, mode RenderMode, children ...Criteria) (*Threshold, error) {
	if len(children) == 0 {
		return nil, ErrNoSubCriteria
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("sub criteria %d: %w", i, ErrNilSubCriteria)
		}
	}
	if amount < 1 || amount > len(children) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrAmountOutOfRange, amount, len(children))
	}
	switch mode {
	case RenderDefault, RenderBulleted:
	case RenderCompact:
		if amount != 1 {
			return nil, fmt.Errorf("%w (got %d)", ErrCompactAmount, amount)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	cp := make([]Criteria, len(children))
	copy(cp, children)
	return &Threshold{amount: amount, children: cp, mode: mode}, nil
}

// MustThreshold is like NewThreshold but panics on an invalid definition.
// It is meant for rule sets built in code at startup.
func MustThreshold(amount int, mode RenderMode, children ...Criteria) *Threshold {
	t, err := NewThreshold(amount, mode, children...)
	if err != nil {
		panic("classification: " + err.Error())
	}
	return t
}

func XOf(amount int, children ...Criteria) (*Threshold, error) {
	return NewThreshold(amount, RenderDefault, children...)
}

func AllOf(children ...Criteria) (*Threshold, error) {
	return NewThreshold(len(children), RenderDefault, children...)
}

func OneOf(children ...Criteria) (*Threshold, error) {
	return NewThreshold(1, RenderDefault, children...)
}

// Bulleted builds a threshold that lists its children as bullet lines, used
// for "one of the following" expansions.
func Bulleted(amount int, children ...Criteria) (*Threshold, error) {
	return NewThreshold(amount, RenderBulleted, children...)
}

func OneOfCompact(children ...Criteria) (*Threshold, error) {
	return NewThreshold(1, RenderCompact, children...)
}

func (t *Threshold) Amount() int      { return t.amount }
func (t *Threshold) Mode() RenderMode { return t.mode }

func (t *Threshold) SubCriteria() []Criteria {
	out := make([]Criteria, len(t.children))
	copy(out, t.children)
	return out
}

// IsCompact reports whether the node renders its children inline.
func (t *Threshold) IsCompact() bool { return t.mode == RenderCompact }

func (*Threshold) criteria() {}

// IsCompact reports whether c advertises compact rendering, so HTML renderers
// can style inline lists differently from bulleted ones.
func IsCompact(c Criteria) bool {
	t, ok := c.(*Threshold)
	return ok && t.IsCompact()
}

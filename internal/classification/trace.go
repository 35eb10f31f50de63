package classification

type Trace struct {
	Kind     string   `json:"kind"`
	Detail   string   `json:"detail,omitempty"`
	Amount   int      `json:"amount,omitempty"`
	Matched  bool     `json:"matched"`
	Skipped  bool     `json:"skipped,omitempty"`
	Children []*Trace `json:"children,omitempty"`
}

// skip records children left unevaluated after the threshold was reached.
func (t *Trace) skip(rest []Criteria) {
	for _, c := range rest {
		kind, detail := kindOf(c)
		t.Children = append(t.Children, &Trace{Kind: kind, Detail: detail, Skipped: true})
	}
}

// Evaluated counts the nodes that were actually evaluated.
func (t *Trace) Evaluated() int {
	if t == nil || t.Skipped {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Evaluated()
	}
	return n
}

package classification

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate reports whether the case satisfies c. It is pure: inputs are only
// read and the result depends on nothing but the arguments. A nil criteria
// is never satisfied.
func Evaluate(c Criteria, caze *Case, person *Person, tests []SampleTest) bool {
	return evaluate(c, caze, person, tests, nil)
}

// EvaluateWithTrace is Evaluate plus a record of which nodes were evaluated,
// what they returned and which were skipped by short-circuiting.
func EvaluateWithTrace(c Criteria, caze *Case, person *Person, tests []SampleTest) (bool, *Trace) {
	tr := &Trace{}
	ok := evaluate(c, caze, person, tests, tr)
	return ok, tr
}

func evaluate(c Criteria, caze *Case, person *Person, tests []SampleTest, tr *Trace) bool {
	if tr != nil {
		tr.Kind, tr.Detail = kindOf(c)
	}

	var ok bool
	switch n := c.(type) {
	case nil:
		ok = false
	case *Threshold:
		ok = n.evaluate(caze, person, tests, tr)
	case *CaseProperty:
		ok = n.match(caze)
	case *Symptom:
		ok = n.match(caze)
	case *Exposure:
		ok = n.match(caze)
	case *PersonAge:
		ok = n.match(caze, person)
	case *PathogenTest:
		ok = n.match(caze, tests)
	case *Expression:
		ok = n.match(caze, person, tests)
	case *Predicate:
		ok = n.fn != nil && n.fn(caze, person, tests)
	default:
		panic(fmt.Sprintf("classification: unhandled criteria %T", c))
	}

	if tr != nil {
		tr.Matched = ok
	}
	return ok
}

// evaluate counts satisfied children in declared order and stops as soon as
// the required amount is reached. All render modes share it.
func (t *Threshold) evaluate(caze *Case, person *Person, tests []SampleTest, tr *Trace) bool {
	if tr != nil {
		tr.Amount = t.amount
	}

	count := 0
	for i, child := range t.children {
		var childTrace *Trace
		if tr != nil {
			childTrace = &Trace{}
			tr.Children = append(tr.Children, childTrace)
		}

		if !evaluate(child, caze, person, tests, childTrace) {
			continue
		}
		count++
		if count >= t.amount {
			if tr != nil {
				tr.skip(t.children[i+1:])
			}
			return true
		}
	}
	return false
}

func kindOf(c Criteria) (kind, detail string) {
	switch n := c.(type) {
	case nil:
		return "none", ""
	case *Threshold:
		return "threshold", n.mode.String()
	case *CaseProperty:
		return "case_property", n.property + "=" + strings.Join(n.values, "|")
	case *Symptom:
		return "symptom", n.name
	case *Exposure:
		return "exposure", n.name
	case *PersonAge:
		return "person_age", boundString(n.min) + ".." + boundString(n.max)
	case *PathogenTest:
		d := string(n.result)
		if len(n.testTypes) > 0 {
			d += ":" + strings.Join(n.testTypes, "|")
		}
		return "pathogen_test", d
	case *Expression:
		return "expression", n.Source()
	case *Predicate:
		return "predicate", n.caption
	default:
		panic(fmt.Sprintf("classification: unhandled criteria %T", c))
	}
}

func boundString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

package classification

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awmpietro/golang-case-classification/internal/classification/eval"
)

type leaf struct {
	caption string
}

func (*leaf) SubCriteria() []Criteria { return nil }
func (*leaf) criteria()               {}

// Caption is the fixed description set at construction, if any.
func (l leaf) Caption() string { return l.caption }

type LeafOption func(*leaf)

// WithCaption replaces the templated description of a leaf with a fixed
// phrase, typically already localized by the rule author.
func WithCaption(caption string) LeafOption {
	return func(l *leaf) { l.caption = strings.TrimSpace(caption) }
}

func newLeaf(opts []LeafOption) leaf {
	var l leaf
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// CaseProperty matches when a case property holds one of the given values.
type CaseProperty struct {
	leaf
	property string
	values   []string
}

func NewCaseProperty(property string, values []string, opts ...LeafOption) (*CaseProperty, error) {
	property = strings.TrimSpace(property)
	if property == "" {
		return nil, errors.New("case property name is required")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("case property %q: at least one value is required", property)
	}
	return &CaseProperty{
		leaf:     newLeaf(opts),
		property: property,
		values:   append([]string(nil), values...),
	}, nil
}

func (c *CaseProperty) Property() string { return c.property }
func (c *CaseProperty) Values() []string { return append([]string(nil), c.values...) }

func (c *CaseProperty) match(caze *Case) bool {
	if caze == nil {
		return false
	}
	v, ok := caze.Properties[c.property]
	if !ok || v == "" {
		return false
	}
	for _, want := range c.values {
		if v == want {
			return true
		}
	}
	return false
}

// Symptom matches when the case reports the symptom as present.
type Symptom struct {
	leaf
	name string
}

func NewSymptom(name string, opts ...LeafOption) (*Symptom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("symptom name is required")
	}
	return &Symptom{leaf: newLeaf(opts), name: name}, nil
}

func (s *Symptom) Name() string { return s.name }

func (s *Symptom) match(caze *Case) bool {
	return caze != nil && caze.Symptoms[s.name] == Yes
}

// Exposure matches when the case's epidemiological data reports the
// exposure.
type Exposure struct {
	leaf
	name string
}

func NewExposure(name string, opts ...LeafOption) (*Exposure, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("exposure name is required")
	}
	return &Exposure{leaf: newLeaf(opts), name: name}, nil
}

func (e *Exposure) Name() string { return e.name }

func (e *Exposure) match(caze *Case) bool {
	return caze != nil && caze.Exposures[e.name] == Yes
}

// PersonAge matches when the person's age in completed years at the case
// report date lies within the inclusive bounds. A nil bound is open.
type PersonAge struct {
	leaf
	min, max *int
}

func NewPersonAge(min, max *int, opts ...LeafOption) (*PersonAge, error) {
	if min == nil && max == nil {
		return nil, errors.New("person age requires a lower or an upper bound")
	}
	if (min != nil && *min < 0) || (max != nil && *max < 0) {
		return nil, errors.New("person age bounds must not be negative")
	}
	if min != nil && max != nil && *min > *max {
		return nil, fmt.Errorf("person age lower bound %d exceeds upper bound %d", *min, *max)
	}
	return &PersonAge{leaf: newLeaf(opts), min: copyInt(min), max: copyInt(max)}, nil
}

func (p *PersonAge) Bounds() (min, max *int) { return copyInt(p.min), copyInt(p.max) }

func (p *PersonAge) match(caze *Case, person *Person) bool {
	if caze == nil {
		return false
	}
	age, ok := person.AgeAt(caze.ReportDate)
	if !ok {
		return false
	}
	if p.min != nil && age < *p.min {
		return false
	}
	if p.max != nil && age > *p.max {
		return false
	}
	return true
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// PathogenTest matches when any sample test of the case's disease has the
// wanted result, restricted to the given test types when any are set.
type PathogenTest struct {
	leaf
	result       TestResult
	testTypes    []string
	verifiedOnly bool
}

func NewPathogenTest(result TestResult, verifiedOnly bool, testTypes []string, opts ...LeafOption) (*PathogenTest, error) {
	if result == "" {
		return nil, errors.New("pathogen test result is required")
	}
	return &PathogenTest{
		leaf:         newLeaf(opts),
		result:       result,
		testTypes:    append([]string(nil), testTypes...),
		verifiedOnly: verifiedOnly,
	}, nil
}

func (p *PathogenTest) Result() TestResult  { return p.result }
func (p *PathogenTest) TestTypes() []string { return append([]string(nil), p.testTypes...) }
func (p *PathogenTest) VerifiedOnly() bool  { return p.verifiedOnly }

func (p *PathogenTest) match(caze *Case, tests []SampleTest) bool {
	for _, t := range tests {
		if t.Result != p.result {
			continue
		}
		if p.verifiedOnly && !t.Verified {
			continue
		}
		if caze != nil && t.TestedDisease != "" && caze.Disease != "" && !strings.EqualFold(t.TestedDisease, caze.Disease) {
			continue
		}
		if len(p.testTypes) == 0 || containsString(p.testTypes, t.TestType) {
			return true
		}
	}
	return false
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

// Expression matches when an expr-lang condition over the case variables
// (see Variables) holds. Missing data or a failing condition is no match,
// as is an Expression not built by NewExpression.
type Expression struct {
	leaf
	cond *eval.Compiled
}

func NewExpression(source string, opts ...LeafOption) (*Expression, error) {
	c, err := eval.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", source, err)
	}
	return &Expression{leaf: newLeaf(opts), cond: c}, nil
}

func (e *Expression) Source() string {
	if e.cond == nil {
		return ""
	}
	return e.cond.Source
}

func (e *Expression) match(caze *Case, person *Person, tests []SampleTest) bool {
	if e.cond == nil {
		return false
	}
	ok, err := eval.Run(e.cond, Variables(caze, person, tests))
	return err == nil && ok
}

// Variables flattens the evaluation inputs into the map expressions run
// against. ageYears is only present when the age is known.
func Variables(caze *Case, person *Person, tests []SampleTest) map[string]any {
	vars := map[string]any{
		"properties":       map[string]any{},
		"symptoms":         map[string]any{},
		"exposures":        map[string]any{},
		"personProperties": map[string]any{},
		"positiveTests":    []any{},
	}
	if caze != nil {
		vars["disease"] = caze.Disease
		vars["diseaseVariant"] = caze.DiseaseVariant
		vars["region"] = caze.Region
		vars["district"] = caze.District
		vars["facility"] = caze.Facility
		vars["properties"] = stringMap(caze.Properties)
		vars["symptoms"] = ynuMap(caze.Symptoms)
		vars["exposures"] = ynuMap(caze.Exposures)
		if age, ok := person.AgeAt(caze.ReportDate); ok {
			vars["ageYears"] = age
		}
	}
	if person != nil {
		vars["sex"] = person.Sex
		vars["personProperties"] = stringMap(person.Properties)
	}

	positive := make([]any, 0, len(tests))
	for _, t := range tests {
		if t.Result == ResultPositive {
			positive = append(positive, t.TestType)
		}
	}
	vars["positiveTests"] = positive
	return vars
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func ynuMap(m map[string]YesNoUnknown) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}

type PredicateFunc func(caze *Case, person *Person, tests []SampleTest) bool

// Predicate wraps a Go check that the other leaves cannot express. fn must
// be pure and must treat absent data as false. A Predicate without fn never
// matches.
type Predicate struct {
	leaf
	fn PredicateFunc
}

func NewPredicate(caption string, fn PredicateFunc) (*Predicate, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, errors.New("predicate caption is required")
	}
	if fn == nil {
		return nil, errors.New("predicate function is required")
	}
	return &Predicate{leaf: newLeaf([]LeafOption{WithCaption(caption)}), fn: fn}, nil
}

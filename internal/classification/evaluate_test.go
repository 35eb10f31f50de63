package classification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdictLeaves(t *testing.T, verdicts []bool) []Criteria {
	t.Helper()
	out := make([]Criteria, len(verdicts))
	for i, v := range verdicts {
		out[i] = fixed(t, fmt.Sprintf("L%d", i), v)
	}
	return out
}

func TestThreshold_AllOfIsLogicalAnd_OneOfIsLogicalOr(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		verdicts := []bool{mask&1 != 0, mask&2 != 0, mask&4 != 0}
		leaves := verdictLeaves(t, verdicts)

		all, err := AllOf(leaves...)
		require.NoError(t, err)
		one, err := OneOf(leaves...)
		require.NoError(t, err)

		and := verdicts[0] && verdicts[1] && verdicts[2]
		or := verdicts[0] || verdicts[1] || verdicts[2]

		assert.Equal(t, and, Evaluate(all, nil, nil, nil), "AND for %v", verdicts)
		assert.Equal(t, or, Evaluate(one, nil, nil, nil), "OR for %v", verdicts)
	}
}

func TestThreshold_RenderModesEvaluateIdentically(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		leaves := verdictLeaves(t, []bool{mask&1 != 0, mask&2 != 0, mask&4 != 0})

		def := MustThreshold(1, RenderDefault, leaves...)
		sub := MustThreshold(1, RenderBulleted, leaves...)
		compact := MustThreshold(1, RenderCompact, leaves...)

		want := Evaluate(def, nil, nil, nil)
		assert.Equal(t, want, Evaluate(sub, nil, nil, nil))
		assert.Equal(t, want, Evaluate(compact, nil, nil, nil))
	}
}

func TestThreshold_ShortCircuitsOnceAmountReached(t *testing.T) {
	var calls int
	th, err := XOf(2,
		fixed(t, "A", true),
		fixed(t, "B", false),
		fixed(t, "C", true),
		counting(t, "D", true, &calls),
		trap{},
	)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.True(t, Evaluate(th, nil, nil, nil))
	})
	assert.Zero(t, calls)
}

func TestThreshold_OneOfReturnsOnFirstTrueChild(t *testing.T) {
	var before, after int
	th, err := OneOfCompact(
		counting(t, "A", false, &before),
		fixed(t, "B", true),
		counting(t, "C", true, &after),
	)
	require.NoError(t, err)

	assert.True(t, Evaluate(th, nil, nil, nil))
	assert.Equal(t, 1, before)
	assert.Zero(t, after)
}

func TestThreshold_EvaluatesEveryChildWhenAmountNotReached(t *testing.T) {
	var calls int
	th, err := XOf(3,
		counting(t, "A", true, &calls),
		counting(t, "B", false, &calls),
		counting(t, "C", true, &calls),
	)
	require.NoError(t, err)

	assert.False(t, Evaluate(th, nil, nil, nil))
	assert.Equal(t, 3, calls)
}

func TestEvaluate_UnknownVariantPanics(t *testing.T) {
	assert.Panics(t, func() { Evaluate(trap{}, nil, nil, nil) })
}

func TestEvaluate_NilCriteriaIsFalse(t *testing.T) {
	assert.False(t, Evaluate(nil, &Case{}, &Person{}, nil))
}

func TestEvaluate_TwoOfThreeConfirmedScenario(t *testing.T) {
	lab, err := NewPathogenTest(ResultPositive, false, []string{"PCR_RT_PCR"})
	require.NoError(t, err)
	fever, err := NewSymptom("fever")
	require.NoError(t, err)
	contact, err := NewExposure("contactWithConfirmedCase")
	require.NoError(t, err)

	confirmed, err := XOf(2, lab, fever, contact)
	require.NoError(t, err)

	caze := &Case{
		Disease:    "MEASLES",
		ReportDate: date("2024-03-01"),
		Symptoms:   map[string]YesNoUnknown{"fever": No},
		Exposures:  map[string]YesNoUnknown{"contactWithConfirmedCase": Yes},
	}
	tests := []SampleTest{{TestType: "PCR_RT_PCR", Result: ResultPositive}}

	assert.True(t, Evaluate(confirmed, caze, &Person{}, tests), "lab and contact true, fever false")

	onlyLab := &Case{Disease: "MEASLES", ReportDate: date("2024-03-01")}
	assert.False(t, Evaluate(confirmed, onlyLab, &Person{}, tests), "only the lab result is true")
}

func TestEvaluate_NestedCompactCountsAsOneUnit(t *testing.T) {
	var nestedCalls int
	nested, err := OneOfCompact(
		fixed(t, "X", false),
		counting(t, "Y", true, &nestedCalls),
		fixed(t, "Z", true),
	)
	require.NoError(t, err)

	outer, err := XOf(2, fixed(t, "A", false), nested, fixed(t, "B", true))
	require.NoError(t, err)

	assert.True(t, Evaluate(outer, nil, nil, nil))
	assert.Equal(t, 1, nestedCalls, "nested node stops at its first true child")

	outer2, err := XOf(2, nested, fixed(t, "C", false))
	require.NoError(t, err)
	assert.False(t, Evaluate(outer2, nil, nil, nil), "nested true counts once, not per true child")
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	fever, err := NewSymptom("fever")
	require.NoError(t, err)
	age, err := NewPersonAge(nil, intPtr(4))
	require.NoError(t, err)
	root, err := AllOf(fever, age)
	require.NoError(t, err)

	caze := &Case{ReportDate: date("2024-03-01"), Symptoms: map[string]YesNoUnknown{"fever": Yes}}
	person := &Person{BirthDate: datePtr("2021-05-10")}

	first := Evaluate(root, caze, person, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Evaluate(root, caze, person, nil))
	}
	assert.True(t, first)
	assert.Equal(t, Yes, caze.Symptoms["fever"], "input must not be mutated")
}

func TestLeaves_DataAbsentIsFalse(t *testing.T) {
	prop, err := NewCaseProperty("epidemiologicalConfirmation", []string{"YES"})
	require.NoError(t, err)
	sym, err := NewSymptom("fever")
	require.NoError(t, err)
	exp, err := NewExposure("travel")
	require.NoError(t, err)
	age, err := NewPersonAge(intPtr(18), nil)
	require.NoError(t, err)
	test, err := NewPathogenTest(ResultPositive, false, nil)
	require.NoError(t, err)
	ex, err := NewExpression(`ageYears >= 18 && symptoms.fever == "YES"`)
	require.NoError(t, err)

	for _, c := range []Criteria{prop, sym, exp, age, test, ex} {
		assert.NotPanics(t, func() {
			assert.False(t, Evaluate(c, nil, nil, nil))
			assert.False(t, Evaluate(c, &Case{}, &Person{}, nil))
		})
	}
}

func TestCaseProperty_MatchesAnyListedValue(t *testing.T) {
	prop, err := NewCaseProperty("outcome", []string{"DECEASED", "RECOVERED"})
	require.NoError(t, err)

	assert.True(t, Evaluate(prop, &Case{Properties: map[string]string{"outcome": "RECOVERED"}}, nil, nil))
	assert.False(t, Evaluate(prop, &Case{Properties: map[string]string{"outcome": "NO_OUTCOME"}}, nil, nil))
}

func TestPersonAge_UsesCompletedYearsAtReportDate(t *testing.T) {
	under5, err := NewPersonAge(intPtr(0), intPtr(4))
	require.NoError(t, err)
	person := &Person{BirthDate: datePtr("2019-06-15")}

	assert.True(t, Evaluate(under5, &Case{ReportDate: date("2024-06-14")}, person, nil), "one day before 5th birthday")
	assert.False(t, Evaluate(under5, &Case{ReportDate: date("2024-06-15")}, person, nil), "on 5th birthday")
	assert.False(t, Evaluate(under5, &Case{ReportDate: date("2019-01-01")}, person, nil), "report before birth")
}

func TestPathogenTest_FiltersByTypeDiseaseAndVerification(t *testing.T) {
	verifiedPCR, err := NewPathogenTest(ResultPositive, true, []string{"PCR_RT_PCR"})
	require.NoError(t, err)
	caze := &Case{Disease: "MEASLES"}

	assert.False(t, Evaluate(verifiedPCR, caze, nil, []SampleTest{
		{TestType: "PCR_RT_PCR", Result: ResultPositive},
	}), "unverified")
	assert.False(t, Evaluate(verifiedPCR, caze, nil, []SampleTest{
		{TestType: "PCR_RT_PCR", Result: ResultPositive, Verified: true, TestedDisease: "RUBELLA"},
	}), "other disease")
	assert.False(t, Evaluate(verifiedPCR, caze, nil, []SampleTest{
		{TestType: "CULTURE", Result: ResultPositive, Verified: true},
	}), "other test type")
	assert.False(t, Evaluate(verifiedPCR, caze, nil, []SampleTest{
		{TestType: "PCR_RT_PCR", Result: ResultNegative, Verified: true},
	}), "negative")
	assert.True(t, Evaluate(verifiedPCR, caze, nil, []SampleTest{
		{TestType: "CULTURE", Result: ResultPositive},
		{TestType: "PCR_RT_PCR", Result: ResultPositive, Verified: true, TestedDisease: "MEASLES"},
	}))
	assert.True(t, Evaluate(verifiedPCR, &Case{Disease: "measles"}, nil, []SampleTest{
		{TestType: "PCR_RT_PCR", Result: ResultPositive, Verified: true, TestedDisease: "MEASLES"},
	}), "disease names compare case-insensitively")
}

func TestExpression_ReadsCaseAndPersonVariables(t *testing.T) {
	ex, err := NewExpression(`sex == "FEMALE" && properties.pregnant == "YES" && "IGM_SERUM_ANTIBODY" in positiveTests`)
	require.NoError(t, err)

	caze := &Case{Properties: map[string]string{"pregnant": "YES"}}
	person := &Person{Sex: "FEMALE"}
	tests := []SampleTest{{TestType: "IGM_SERUM_ANTIBODY", Result: ResultPositive}}

	assert.True(t, Evaluate(ex, caze, person, tests))
	assert.False(t, Evaluate(ex, caze, &Person{Sex: "MALE"}, tests))
}

func TestEvaluateWithTrace_RecordsSkippedChildren(t *testing.T) {
	fever, err := NewSymptom("fever")
	require.NoError(t, err)
	cough, err := NewSymptom("cough")
	require.NoError(t, err)
	rash, err := NewSymptom("rash")
	require.NoError(t, err)
	root, err := OneOf(fever, cough, rash)
	require.NoError(t, err)

	caze := &Case{Symptoms: map[string]YesNoUnknown{"cough": Yes, "rash": Yes}}
	ok, tr := EvaluateWithTrace(root, caze, nil, nil)

	assert.True(t, ok)
	assert.Equal(t, ok, Evaluate(root, caze, nil, nil))
	assert.Equal(t, "threshold", tr.Kind)
	assert.Equal(t, 1, tr.Amount)
	require.Len(t, tr.Children, 3)
	assert.False(t, tr.Children[0].Matched)
	assert.True(t, tr.Children[1].Matched)
	assert.True(t, tr.Children[2].Skipped)
	assert.Equal(t, "rash", tr.Children[2].Detail)
	assert.Equal(t, 3, tr.Evaluated())
}

package classification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapLocalizer map[Key]string

func (m mapLocalizer) String(key Key) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &MissingKeyError{Locale: "test", Key: key}
	}
	return v, nil
}

func (mapLocalizer) Upper(s string) string { return strings.ToUpper(s) }

func englishLocalizer() mapLocalizer {
	return mapLocalizer{
		KeyOne: "one", KeyTwo: "two", KeyThree: "three", KeyFour: "four",
		KeyFive: "five", KeySix: "six", KeySeven: "seven", KeyEight: "eight",
		KeyNine: "nine", KeyTen: "ten", KeyEleven: "eleven", KeyTwelve: "twelve",
		KeyOf:    "of",
		KeyOneOf: "one of",
		KeyOr:    "or",

		KeyCaseProperty:     "{property} <b>{values}</b>",
		KeySymptom:          "Symptom <b>{symptom}</b>",
		KeyExposure:         "Exposure <b>{exposure}</b>",
		KeyPersonAgeBetween: "Person aged {min} to {max} years",
		KeyPersonAgeAtLeast: "Person aged {min} years or older",
		KeyPersonAgeAtMost:  "Person aged {max} years or younger",
		KeyPathogenTest:     "<b>{result}</b> laboratory result ({tests})",
		KeyAnyTest:          "any test type",
	}
}

// fixed is a leaf with a constant verdict and caption.
func fixed(t *testing.T, caption string, verdict bool) *Predicate {
	t.Helper()
	p, err := NewPredicate(caption, func(*Case, *Person, []SampleTest) bool { return verdict })
	require.NoError(t, err)
	return p
}

// counting is a leaf that records how often it was evaluated.
func counting(t *testing.T, caption string, verdict bool, calls *int) *Predicate {
	t.Helper()
	p, err := NewPredicate(caption, func(*Case, *Person, []SampleTest) bool {
		*calls++
		return verdict
	})
	require.NoError(t, err)
	return p
}

// trap is not handled by Evaluate and panics when reached.
type trap struct{}

func (trap) SubCriteria() []Criteria { return nil }
func (trap) criteria()               {}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func intPtr(v int) *int { return &v }

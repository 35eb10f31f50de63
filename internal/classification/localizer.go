package classification

import (
	"fmt"
	"strconv"
)

// Key identifies a localized string used when describing criteria.
type Key string

const (
	KeyOne    Key = "one"
	KeyTwo    Key = "two"
	KeyThree  Key = "three"
	KeyFour   Key = "four"
	KeyFive   Key = "five"
	KeySix    Key = "six"
	KeySeven  Key = "seven"
	KeyEight  Key = "eight"
	KeyNine   Key = "nine"
	KeyTen    Key = "ten"
	KeyEleven Key = "eleven"
	KeyTwelve Key = "twelve"

	KeyOf    Key = "of"
	KeyOneOf Key = "oneOf"
	KeyOr    Key = "or"

	KeyCaseProperty     Key = "caseProperty"
	KeySymptom          Key = "symptom"
	KeyExposure         Key = "exposure"
	KeyPersonAgeBetween Key = "personAgeBetween"
	KeyPersonAgeAtLeast Key = "personAgeAtLeast"
	KeyPersonAgeAtMost  Key = "personAgeAtMost"
	KeyPathogenTest     Key = "pathogenTest"
	KeyAnyTest          Key = "anyTest"
)

var numeralKeys = [...]Key{
	KeyOne, KeyTwo, KeyThree, KeyFour, KeyFive, KeySix,
	KeySeven, KeyEight, KeyNine, KeyTen, KeyEleven, KeyTwelve,
}

// MaxAmountWord is the largest amount rendered as a word.
const MaxAmountWord = len(numeralKeys)

// Localizer resolves localized strings for descriptions.
type Localizer interface {
	String(key Key) (string, error)
	Upper(s string) string
}

type MissingKeyError struct {
	Locale string
	Key    Key
}

func (e *MissingKeyError) Error() string {
	if e.Locale == "" {
		return fmt.Sprintf("missing localized string %q", e.Key)
	}
	return fmt.Sprintf("missing localized string %q for locale %q", e.Key, e.Locale)
}

// AmountWord maps 1..12 to the upper-cased localized numeral and any other
// amount to its decimal digits.
func AmountWord(loc Localizer, amount int) (string, error) {
	if amount < 1 || amount > MaxAmountWord {
		return strconv.Itoa(amount), nil
	}
	return upperString(loc, numeralKeys[amount-1])
}

func upperString(loc Localizer, key Key) (string, error) {
	s, err := loc.String(key)
	if err != nil {
		return "", err
	}
	return loc.Upper(s), nil
}

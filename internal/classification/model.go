package classification

import "time"

type YesNoUnknown string

const (
	Yes     YesNoUnknown = "YES"
	No      YesNoUnknown = "NO"
	Unknown YesNoUnknown = "UNKNOWN"
)

type TestResult string

const (
	ResultPositive      TestResult = "POSITIVE"
	ResultNegative      TestResult = "NEGATIVE"
	ResultPending       TestResult = "PENDING"
	ResultIndeterminate TestResult = "INDETERMINATE"
)

// Case is the part of a case record the criteria read. It is owned by the
// caller and never mutated here.
type Case struct {
	Disease        string                  `json:"disease"`
	DiseaseVariant string                  `json:"disease_variant,omitempty"`
	ReportDate     time.Time               `json:"report_date"`
	OnsetDate      *time.Time              `json:"onset_date,omitempty"`
	Region         string                  `json:"region,omitempty"`
	District       string                  `json:"district,omitempty"`
	Facility       string                  `json:"facility,omitempty"`
	Properties     map[string]string       `json:"properties,omitempty"`
	Symptoms       map[string]YesNoUnknown `json:"symptoms,omitempty"`
	Exposures      map[string]YesNoUnknown `json:"exposures,omitempty"`
}

type Person struct {
	BirthDate  *time.Time        `json:"birth_date,omitempty"`
	Sex        string            `json:"sex,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// SampleTest is a single pathogen test outcome of one of the case's samples.
type SampleTest struct {
	TestType      string     `json:"test_type"`
	TestedDisease string     `json:"tested_disease,omitempty"`
	Result        TestResult `json:"result"`
	Verified      bool       `json:"verified,omitempty"`
	ResultDate    *time.Time `json:"result_date,omitempty"`
}

// AgeAt returns the completed years between birth and at. ok is false when
// the birth date is unknown or after at.
func (p *Person) AgeAt(at time.Time) (years int, ok bool) {
	if p == nil || p.BirthDate == nil || at.IsZero() {
		return 0, false
	}
	birth := p.BirthDate.UTC()
	at = at.UTC()
	if at.Before(birth) {
		return 0, false
	}
	years = at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years, true
}

package classifydto

import (
	"errors"
	"net/http"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/classification"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
)

type ClassifyRequest struct {
	Disease  string                      `json:"disease,omitempty"`
	RulesDOT string                      `json:"rules_dot,omitempty"`
	Country  string                      `json:"country,omitempty"`
	Case     classification.Case         `json:"case"`
	Person   classification.Person       `json:"person"`
	Tests    []classification.SampleTest `json:"tests,omitempty"`
	Debug    bool                        `json:"debug,omitempty"`
}

func (r ClassifyRequest) ToApp() app.ClassifyRequest {
	return app.ClassifyRequest{
		Disease:  r.Disease,
		RulesDOT: r.RulesDOT,
		Country:  r.Country,
		Case:     r.Case,
		Person:   r.Person,
		Tests:    r.Tests,
		Debug:    r.Debug,
	}
}

type DescribeRequest struct {
	Disease  string `json:"disease,omitempty"`
	RulesDOT string `json:"rules_dot,omitempty"`
	Country  string `json:"country,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

func (r DescribeRequest) ToApp() app.DescribeRequest {
	return app.DescribeRequest{
		Disease:  r.Disease,
		RulesDOT: r.RulesDOT,
		Country:  r.Country,
		Locale:   r.Locale,
	}
}

type DiseasesResponse struct {
	Diseases []string `json:"diseases"`
}

// Status maps a service error to the HTTP status returned to the caller.
func Status(err error) int {
	if errors.Is(err, ruleset.ErrUnknownDisease) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func ErrorBody(msg string, err error) map[string]any {
	return map[string]any{
		"error":   msg,
		"details": err.Error(),
	}
}

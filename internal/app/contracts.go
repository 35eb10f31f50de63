package app

import (
	"github.com/awmpietro/golang-case-classification/internal/classification"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
)

type ClassificationService interface {
	Classify(req ClassifyRequest) (*ClassificationResult, error)
	Describe(req DescribeRequest) (*RulesDescription, error)
	Diseases() []string
}

type Classification string

const (
	NotClassified            Classification = "NOT_CLASSIFIED"
	Suspect                  Classification = "SUSPECT"
	Probable                 Classification = "PROBABLE"
	Confirmed                Classification = "CONFIRMED"
	ConfirmedNoSymptoms      Classification = "CONFIRMED_NO_SYMPTOMS"
	ConfirmedUnknownSymptoms Classification = "CONFIRMED_UNKNOWN_SYMPTOMS"
	NoCase                   Classification = "NO_CASE"
)

// ClassifyRequest selects the rules either by Disease (defaulting to the
// case's disease) or by an ad-hoc DOT definition in RulesDOT.
type ClassifyRequest struct {
	Disease  string
	RulesDOT string
	Country  string
	Case     classification.Case
	Person   classification.Person
	Tests    []classification.SampleTest
	Debug    bool
}

type TierOutcome struct {
	Tier           ruleset.Tier   `json:"tier"`
	Classification Classification `json:"classification"`
	Matched        bool           `json:"matched"`
}

type TierTrace struct {
	Tier  ruleset.Tier          `json:"tier"`
	Trace *classification.Trace `json:"trace"`
}

type ClassificationResult struct {
	EvaluationID   string         `json:"evaluation_id"`
	Disease        string         `json:"disease"`
	Classification Classification `json:"classification"`
	Extended       bool           `json:"extended,omitempty"`
	Tiers          []TierOutcome  `json:"tiers"`
	Traces         []TierTrace    `json:"traces,omitempty"`
}

type DescribeRequest struct {
	Disease  string
	RulesDOT string
	Country  string
	Locale   string
}

type TierDescription struct {
	Tier    ruleset.Tier `json:"tier"`
	Title   string       `json:"title"`
	Markup  string       `json:"markup"`
	Compact bool         `json:"compact,omitempty"`
}

type RulesDescription struct {
	Disease string            `json:"disease"`
	Locale  string            `json:"locale"`
	Tiers   []TierDescription `json:"tiers"`
	HTML    string            `json:"html"`
}

package ruleset

import (
	"github.com/awmpietro/golang-case-classification/internal/classification"
)

type Tier string

const (
	TierSuspect                  Tier = "suspect"
	TierProbable                 Tier = "probable"
	TierConfirmed                Tier = "confirmed"
	TierConfirmedNoSymptoms      Tier = "confirmed_no_symptoms"
	TierConfirmedUnknownSymptoms Tier = "confirmed_unknown_symptoms"
	TierNotACase                 Tier = "not_a_case"
)

var tierOrder = []Tier{
	TierSuspect,
	TierProbable,
	TierConfirmed,
	TierConfirmedNoSymptoms,
	TierConfirmedUnknownSymptoms,
	TierNotACase,
}

// Tiers returns every tier in display order.
func Tiers() []Tier { return append([]Tier(nil), tierOrder...) }

func ParseTier(s string) (Tier, bool) {
	for _, t := range tierOrder {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Extended reports whether the tier is only used by jurisdictions with
// extended classification.
func (t Tier) Extended() bool {
	return t == TierConfirmedNoSymptoms || t == TierConfirmedUnknownSymptoms
}

// TitleKey is the localization key of the tier's heading.
func (t Tier) TitleKey() classification.Key {
	return classification.Key("tier." + string(t))
}

// RuleSet holds the criteria trees of one disease. It is immutable once
// compiled and safe for concurrent use.
type RuleSet struct {
	Disease string
	roots   map[Tier]classification.Criteria
}

func NewRuleSet(disease string, roots map[Tier]classification.Criteria) *RuleSet {
	cp := make(map[Tier]classification.Criteria, len(roots))
	for t, c := range roots {
		if c != nil {
			cp[t] = c
		}
	}
	return &RuleSet{Disease: disease, roots: cp}
}

// Criteria returns the root of tier, or nil when the disease defines none.
func (r *RuleSet) Criteria(tier Tier) classification.Criteria {
	return r.roots[tier]
}

// Select is Criteria with extended tiers hidden unless extended is set.
func (r *RuleSet) Select(tier Tier, extended bool) classification.Criteria {
	if tier.Extended() && !extended {
		return nil
	}
	return r.roots[tier]
}

// Tiers returns the tiers the rule set defines, in display order.
func (r *RuleSet) Tiers() []Tier {
	out := make([]Tier, 0, len(r.roots))
	for _, t := range tierOrder {
		if _, ok := r.roots[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

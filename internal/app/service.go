package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/awmpietro/golang-case-classification/internal/classification"
	"github.com/awmpietro/golang-case-classification/internal/i18n"
	"github.com/awmpietro/golang-case-classification/internal/render"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
)

var ErrRulesRequired = errors.New("disease or rules_dot is required")

// AdHocDisease is the disease reported to observers for rule sets sent with
// the request, whose graph names are caller controlled.
const AdHocDisease = "adhoc"

type Compiler interface {
	Compile(dot string) (*ruleset.RuleSet, error)
}

type Cache interface {
	GetOrCompute(dot string, fn func() (*ruleset.RuleSet, error)) (*ruleset.RuleSet, error)
}

type Registry interface {
	Get(disease string) (*ruleset.RuleSet, error)
	Diseases() []string
}

type ClassificationObserver interface {
	ObserveClassification(disease, classification string)
}

// classificationOrder is the order tiers are tried in; the first match
// decides the classification.
var classificationOrder = []ruleset.Tier{
	ruleset.TierConfirmed,
	ruleset.TierConfirmedNoSymptoms,
	ruleset.TierConfirmedUnknownSymptoms,
	ruleset.TierProbable,
	ruleset.TierSuspect,
	ruleset.TierNotACase,
}

var tierClassification = map[ruleset.Tier]Classification{
	ruleset.TierSuspect:                  Suspect,
	ruleset.TierProbable:                 Probable,
	ruleset.TierConfirmed:                Confirmed,
	ruleset.TierConfirmedNoSymptoms:      ConfirmedNoSymptoms,
	ruleset.TierConfirmedUnknownSymptoms: ConfirmedUnknownSymptoms,
	ruleset.TierNotACase:                 NoCase,
}

type Service struct {
	registry Registry
	compiler Compiler
	cache    Cache
	bundle   *i18n.Bundle

	extended        map[string]struct{}
	latencyObserver TierLatencyObserver
	classObserver   ClassificationObserver
	logger          zerolog.Logger
}

type ServiceOption func(*Service)

func WithTierLatencyObserver(observer TierLatencyObserver) ServiceOption {
	return func(s *Service) {
		s.latencyObserver = observer
	}
}

func WithClassificationObserver(observer ClassificationObserver) ServiceOption {
	return func(s *Service) {
		s.classObserver = observer
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithExtendedClassification enables the confirmed-without-symptoms tiers
// for the given country codes.
func WithExtendedClassification(countries ...string) ServiceOption {
	return func(s *Service) {
		for _, c := range countries {
			if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
				s.extended[c] = struct{}{}
			}
		}
	}
}

func NewService(registry Registry, compiler Compiler, cache Cache, bundle *i18n.Bundle, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		compiler: compiler,
		cache:    cache,
		bundle:   bundle,
		extended: map[string]struct{}{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Diseases() []string {
	return s.registry.Diseases()
}

// Classify evaluates the tiers of the case's disease and returns the first
// that matches. It never mutates the request.
func (s *Service) Classify(req ClassifyRequest) (*ClassificationResult, error) {
	disease := req.Disease
	if disease == "" {
		disease = req.Case.Disease
	}
	rs, err := s.resolve(disease, req.RulesDOT)
	if err != nil {
		return nil, err
	}

	caze := req.Case
	if caze.Disease == "" || strings.EqualFold(caze.Disease, rs.Disease) {
		caze.Disease = rs.Disease
	}
	extended := s.isExtended(req.Country)
	observed := rs.Disease
	if req.RulesDOT != "" {
		observed = AdHocDisease
	}

	res := &ClassificationResult{
		EvaluationID:   uuid.NewString(),
		Disease:        rs.Disease,
		Classification: NotClassified,
		Extended:       extended,
		Tiers:          []TierOutcome{},
	}

	for _, tier := range classificationOrder {
		crit := rs.Select(tier, extended)
		if crit == nil {
			continue
		}

		start := time.Now()
		var matched bool
		if req.Debug {
			var tr *classification.Trace
			matched, tr = classification.EvaluateWithTrace(crit, &caze, &req.Person, req.Tests)
			res.Traces = append(res.Traces, TierTrace{Tier: tier, Trace: tr})
		} else {
			matched = classification.Evaluate(crit, &caze, &req.Person, req.Tests)
		}
		s.observeTierLatency(observed, tier, time.Since(start))

		res.Tiers = append(res.Tiers, TierOutcome{Tier: tier, Classification: tierClassification[tier], Matched: matched})
		if matched {
			res.Classification = tierClassification[tier]
			break
		}
	}

	if s.classObserver != nil {
		s.classObserver.ObserveClassification(observed, string(res.Classification))
	}
	s.logger.Debug().
		Str("evaluation_id", res.EvaluationID).
		Str("disease", res.Disease).
		Str("classification", string(res.Classification)).
		Bool("extended", extended).
		Int("tiers_evaluated", len(res.Tiers)).
		Msg("case classified")

	return res, nil
}

// Describe renders the rules of every tier in the requested locale.
func (s *Service) Describe(req DescribeRequest) (*RulesDescription, error) {
	rs, err := s.resolve(req.Disease, req.RulesDOT)
	if err != nil {
		return nil, err
	}

	loc := s.bundle.Localizer(req.Locale)
	extended := s.isExtended(req.Country)

	out := &RulesDescription{Disease: rs.Disease, Locale: loc.Locale(), Tiers: []TierDescription{}}
	sections := make([]render.Section, 0, len(rs.Tiers()))
	for _, tier := range rs.Tiers() {
		crit := rs.Select(tier, extended)
		if crit == nil {
			continue
		}
		title, err := loc.String(tier.TitleKey())
		if err != nil {
			return nil, err
		}
		markup, err := classification.Describe(crit, loc)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", tier, err)
		}
		out.Tiers = append(out.Tiers, TierDescription{
			Tier:    tier,
			Title:   title,
			Markup:  markup,
			Compact: classification.IsCompact(crit),
		})
		sections = append(sections, render.Section{Tier: string(tier), Title: title, Criteria: crit})
	}

	out.HTML, err = render.HTML(sections, loc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) resolve(disease, dot string) (*ruleset.RuleSet, error) {
	if dot != "" {
		return s.cache.GetOrCompute(dot, func() (*ruleset.RuleSet, error) {
			return s.compiler.Compile(dot)
		})
	}
	if strings.TrimSpace(disease) == "" {
		return nil, ErrRulesRequired
	}
	return s.registry.Get(disease)
}

func (s *Service) isExtended(country string) bool {
	_, ok := s.extended[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}

func (s *Service) observeTierLatency(disease string, tier ruleset.Tier, d time.Duration) {
	if s.latencyObserver == nil {
		return
	}
	s.latencyObserver.ObserveTierLatency(disease, string(tier), d)
}

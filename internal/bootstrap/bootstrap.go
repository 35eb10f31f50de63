package bootstrap

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/config"
	"github.com/awmpietro/golang-case-classification/internal/i18n"
	"github.com/awmpietro/golang-case-classification/internal/metrics"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
	"github.com/awmpietro/golang-case-classification/internal/ruleset/cache"
)

// Service wires the classification service from the runtime settings. m is
// optional; when set it receives classification counts and tier latencies.
// The returned close func flushes the latency observer and must be called on
// shutdown.
func Service(cfg config.Runtime, logger zerolog.Logger, m *metrics.Metrics) (*app.Service, func(), error) {
	registry, err := ruleset.Builtin()
	if err != nil {
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}
	bundle, err := i18n.Default(cfg.DefaultLocale)
	if err != nil {
		return nil, nil, fmt.Errorf("load localization: %w", err)
	}

	sinks := []app.TierLatencyObserver{app.NewTierLatencyLogger(logger)}
	opts := []app.ServiceOption{
		app.WithLogger(logger),
		app.WithExtendedClassification(cfg.ExtendedCountries...),
	}
	if m != nil {
		sinks = append(sinks, m)
		opts = append(opts, app.WithClassificationObserver(m))
	}
	latency := app.NewAsyncTierLatencyObserver(cfg.ObsBuffer, sinks...)
	opts = append(opts, app.WithTierLatencyObserver(latency))

	svc := app.NewService(
		registry,
		ruleset.NewCompiler(),
		cache.NewInMemory(cfg.CacheMaxItems),
		bundle,
		opts...,
	)

	logger.Info().
		Strs("diseases", registry.Diseases()).
		Strs("locales", bundle.Locales()).
		Strs("extended_countries", cfg.ExtendedCountries).
		Msg("classification service ready")

	return svc, latency.Close, nil
}

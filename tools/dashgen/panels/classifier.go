package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ClassifierCallsRate returns a timeseries panel showing LLM classifier
// calls per second.
func ClassifierCallsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Classifier Calls").
		Description("LLM classifier calls per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(eap_classifier_calls_total{job="eapulse"}[5m]))`,
			"calls/s", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ClassifierFailureRate returns a timeseries panel showing classifier runs
// that fell back to safe defaults.
func ClassifierFailureRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Classifier Fallbacks").
		Description("Classifier runs per second that degraded to all-false defaults").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`eap:classifier_failures:rate5m`, "fallbacks/s", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.01, 0.1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ClassifierCacheHitRatio returns a timeseries panel showing the fraction
// of classifier results served from cache.
func ClassifierCacheHitRatio() *timeseries.PanelBuilder {
	expr := `sum(rate(eap_classifier_cache_hits_total{job="eapulse"}[5m])) / (sum(rate(eap_classifier_cache_hits_total{job="eapulse"}[5m])) + sum(rate(eap_classifier_calls_total{job="eapulse"}[5m]))) * 100`
	return timeseries.NewPanelBuilder().
		Title("Cache Hit Ratio").
		Description("Percentage of classifier results served from cache").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(expr, "hit %", "A")).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

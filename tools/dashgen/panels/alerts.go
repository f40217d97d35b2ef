package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// AlertsCreatedRate returns a timeseries panel showing alerts created per
// second.
func AlertsCreatedRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Alerts Created").
		Description("New alerts created per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`eap:alerts_created:rate5m`, "alerts/s", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AlertsDedupedRate returns a timeseries panel showing firings folded into
// an existing open alert.
func AlertsDedupedRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Deduped Firings").
		Description("Firings per second folded into an existing open alert").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(eap_alerts_deduped_total{job="eapulse"}[5m]))`,
			"deduped/s", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// HealthComputedByStatus returns a timeseries panel showing health
// computations per second by resulting status.
func HealthComputedByStatus() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Health Computations").
		Description("Health computations per second by resulting status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(eap_health_computed_total{job="eapulse"}[5m])) by (status)`,
			"{{status}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PatternStatesPruned returns a stat panel showing expired pattern states
// removed by the sweep in the last 24 hours.
func PatternStatesPruned() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Pattern States Pruned (24h)").
		Description("Expired pattern states removed by the daily sweep").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`increase(eap_pattern_states_pruned_total{job="eapulse"}[24h])`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

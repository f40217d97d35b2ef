package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// EvaluationLatency returns a timeseries panel showing p50 and p95 report
// evaluation durations.
func EvaluationLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Evaluation Latency").
		Description("Report evaluation duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.50, sum(rate(eap_evaluation_duration_seconds_bucket{job="eapulse"}[5m])) by (le))`,
			"p50",
			"A",
		)).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(eap_evaluation_duration_seconds_bucket{job="eapulse"}[5m])) by (le))`,
			"p95",
			"B",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RuleFiringsRate returns a timeseries panel showing rule firings per second
// broken down by severity.
func RuleFiringsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Rule Firings").
		Description("Rule firings per second by severity").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(eap_rule_firings_total{job="eapulse"}[5m])) by (severity)`,
			"{{severity}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SuppressedFirings returns a stat panel showing PTO-suppressed firings in
// the last 24 hours.
func SuppressedFirings() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Suppressed Firings (24h)").
		Description("Firings suppressed by active PTO in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`increase(eap_suppressed_firings_total{job="eapulse"}[24h])`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/eapulse/eapulse/tools/dashgen/panels"
)

// BuildOverview constructs the eapulse Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("eapulse Overview").
		Uid("eap-overview").
		Tags([]string{"eap", "eapulse"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Rule Evaluation.
	b.WithRow(dashboard.NewRowBuilder("Rule Evaluation").
		WithPanel(panels.EvaluationLatency()).
		WithPanel(panels.RuleFiringsRate()).
		WithPanel(panels.SuppressedFirings()))

	// Row 4: Classifier.
	b.WithRow(dashboard.NewRowBuilder("Classifier").
		WithPanel(panels.ClassifierCallsRate()).
		WithPanel(panels.ClassifierFailureRate()).
		WithPanel(panels.ClassifierCacheHitRatio()))

	// Row 5: Alerts.
	b.WithRow(dashboard.NewRowBuilder("Alerts").
		WithPanel(panels.AlertsCreatedRate()).
		WithPanel(panels.AlertsDedupedRate()))

	// Row 6: Health Scoring.
	b.WithRow(dashboard.NewRowBuilder("Health Scoring").
		WithPanel(panels.HealthComputedByStatus()).
		WithPanel(panels.PatternStatesPruned()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}

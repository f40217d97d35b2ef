package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "eap-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "eap-recording",
					Rules: []Rule{
						{
							Record: "eap:http_requests:rate5m",
							Expr:   `sum(rate(eap_http_requests_total[5m]))`,
						},
						{
							Record: "eap:http_errors:rate5m",
							Expr:   `sum(rate(eap_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "eap:rule_firings:rate5m",
							Expr:   `sum(rate(eap_rule_firings_total[5m]))`,
						},
						{
							Record: "eap:classifier_failures:rate5m",
							Expr:   `rate(eap_classifier_failures_total[5m])`,
						},
						{
							Record: "eap:alerts_created:rate5m",
							Expr:   `rate(eap_alerts_created_total[5m])`,
						},
					},
				},
			},
		},
	}
}

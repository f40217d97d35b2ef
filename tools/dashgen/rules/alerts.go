package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// eapulse operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "eap-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "eap-alerts",
					Rules: []Rule{
						{
							Alert: "EapDown",
							Expr:  `absent(up{job="eapulse"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "eapulse is down",
								"description": "The eapulse job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "EapReadinessDown",
							Expr:  `eap_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "eapulse readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "EapHighErrorRate",
							Expr:  `eap:http_errors:rate5m / eap:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on eapulse",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "EapClassifierDegraded",
							Expr:  `eap:classifier_failures:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "LLM classifier fallback rate is elevated",
								"description": "Classifier runs are degrading to all-false defaults at more than 0.1/s for the last 5 minutes. AI rules are effectively disabled.",
							},
						},
						{
							Alert: "EapEvaluationSlow",
							Expr:  `histogram_quantile(0.95, sum(rate(eap_evaluation_duration_seconds_bucket[5m])) by (le)) > 60`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Report evaluation is slow",
								"description": "The p95 report evaluation duration has been above 60 seconds for 10 minutes.",
							},
						},
						{
							Alert: "EapCriticalAlertSurge",
							Expr:  `sum(increase(eap_rule_firings_total{severity="CRITICAL"}[1h])) > 10`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Surge of critical rule firings",
								"description": "More than 10 CRITICAL rule firings in the last hour across all pairings.",
							},
						},
					},
				},
			},
		},
	}
}

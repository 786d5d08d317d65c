package domain

// EscalationRule turns a classification into an alert severity. Rules are
// evaluated in order; the first match wins.
type EscalationRule struct {
	Name      string
	AlertType string
	Severity  Severity
	Evaluator func(c IntentClassification) bool
}

var DefaultEscalationRules = []EscalationRule{
	{
		Name:      "sabotage",
		AlertType: "Sabotage",
		Severity:  SeverityCritical,
		Evaluator: func(c IntentClassification) bool {
			return c.Intent == IntentSabotage
		},
	},
	{
		Name:      "high_risk",
		AlertType: "High Risk Anomaly",
		Severity:  SeverityCritical,
		Evaluator: func(c IntentClassification) bool {
			return c.RiskScore >= 70
		},
	},
	{
		Name:      "elevated_risk",
		AlertType: "Track Anomaly",
		Severity:  SeverityWarning,
		Evaluator: func(c IntentClassification) bool {
			return c.RiskScore >= 50
		},
	},
}

// Escalate returns the first matching rule, or false when the
// classification doesn't warrant an alert.
func Escalate(rules []EscalationRule, c IntentClassification) (EscalationRule, bool) {
	for _, r := range rules {
		if r.Evaluator(c) {
			return r, true
		}
	}
	return EscalationRule{}, false
}

package domain

import (
	"fmt"
	"strings"
)

// FormatOpportunitySummary renderiza una oportunidad como bloque de texto
// multilínea para display. Solo formatea, no calcula nada.
func FormatOpportunitySummary(o ArbitrageOpportunity) string {
	lines := []string{
		"Event: " + o.EventName(),
		"Sport: " + o.SportTitle,
		fmt.Sprintf("Profit Margin: %.2f%%", o.ProfitPercentage()),
		"Start Time: " + o.CommenceTime.UTC().Format("2006-01-02 15:04 UTC"),
		"",
		"Best Odds:",
	}

	for _, outcome := range o.Outcomes {
		lines = append(lines, fmt.Sprintf("  %s: %.2f @ %s",
			outcome.Name, outcome.Price, outcome.Bookmaker))
	}

	return strings.Join(lines, "\n")
}

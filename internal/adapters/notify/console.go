package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	bankroll float64
	table    bool
	details  bool
}

// NewConsole crea un notificador que escribe a stdout. bankroll es el stake
// total usado para el reparto de ejemplo en el modo detallado.
func NewConsole(bankroll float64, table, details bool) *Console {
	return &Console{out: os.Stdout, bankroll: bankroll, table: table, details: details}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table, details bool) *Console {
	return &Console{out: w, bankroll: 100, table: table, details: details}
}

// Notify imprime los resultados del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, results []domain.ScanResult) error {
	now := time.Now().Format("15:04:05")

	opps := collectOpportunities(results)
	events := countEvents(results)

	if len(opps) == 0 {
		fmt.Fprintf(c.out, "[%s] %d sports, %d events scanned — no arbitrage found\n",
			now, len(results), events)
		return nil
	}

	if c.table {
		c.printFull(now, results, opps)
	} else {
		c.printCompact(now, results, opps)
	}

	if c.details {
		c.printDetails(opps)
	}

	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(now string, results []domain.ScanResult, opps []domain.ArbitrageOpportunity) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d sports → %d opportunities", now, len(results), len(opps))

	shown := 0
	for _, opp := range opps {
		if shown >= 3 {
			break
		}
		fmt.Fprintf(&sb, " | %s %.2f%%", truncate(opp.EventName(), 28), opp.ProfitPercentage())
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de oportunidades rankeadas.
func (c *Console) printFull(now string, results []domain.ScanResult, opps []domain.ArbitrageOpportunity) {
	fmt.Fprintf(c.out, "\n[%s] %d opportunities across %d sports\n",
		now, len(opps), len(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Sport", "Event", "Starts", "Margin", "Implied", "Best Odds")

	for i, opp := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			opp.SportTitle,
			truncate(opp.EventName(), 34),
			opp.CommenceTime.UTC().Format("01-02 15:04"),
			fmt.Sprintf("%.2f%%", opp.ProfitPercentage()),
			fmt.Sprintf("%.4f", opp.TotalImpliedProbability),
			oddsLabel(opp.Outcomes),
		)
	}

	table.Render()
}

// printDetails imprime el desglose con reparto de stakes de los top 3.
func (c *Console) printDetails(opps []domain.ArbitrageOpportunity) {
	top := opps
	if len(top) > 3 {
		top = opps[:3]
	}

	for i, opp := range top {
		fmt.Fprintf(c.out, "\n--- #%d ---\n", i+1)
		fmt.Fprintln(c.out, domain.FormatOpportunitySummary(opp))

		plan := domain.CalculateStakes(opp.Outcomes, c.bankroll)
		fmt.Fprintf(c.out, "\nStake split ($%.0f total):\n", c.bankroll)
		for _, rec := range plan.Stakes {
			fmt.Fprintf(c.out, "  $%.2f on %s @ %.2f (%s) → returns $%.2f\n",
				rec.Stake, rec.OutcomeName, rec.Odds, rec.Bookmaker, rec.PotentialReturn)
		}
		fmt.Fprintf(c.out, "  Guaranteed profit: $%.2f (%.2f%%)\n",
			plan.GuaranteedProfit, plan.ProfitPercentage)
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func collectOpportunities(results []domain.ScanResult) []domain.ArbitrageOpportunity {
	var all []domain.ArbitrageOpportunity
	for _, r := range results {
		all = append(all, r.Opportunities...)
	}
	// Cada ScanResult ya viene ordenado; el merge mantiene el ranking global
	domain.SortByProfitMargin(all)
	return all
}

func countEvents(results []domain.ScanResult) int {
	n := 0
	for _, r := range results {
		n += r.EventsScanned
	}
	return n
}

func oddsLabel(outcomes []domain.OutcomeQuote) string {
	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		parts = append(parts, fmt.Sprintf("%.2f@%s", o.Price, o.Bookmaker))
	}
	return strings.Join(parts, " / ")
}

// truncate corta por runas: nombres de equipo con acentos o caracteres
// multi-byte no pueden quedar partidos a mitad de secuencia UTF-8.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

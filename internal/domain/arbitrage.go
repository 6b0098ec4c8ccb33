package domain

import (
	"sort"

	"github.com/google/uuid"
)

// OutcomeTable es la tabla de mejores precios por resultado para un evento.
// Mantiene el orden de inserción de los nombres: el primer quote visto fija
// la posición del resultado, y los empates de precio se quedan con el
// bookmaker visto primero (reemplazamos solo con precio estrictamente mayor).
// Ese desempate "first seen" es comportamiento observado del upstream y lo
// preservamos tal cual en vez de imponer una regla más estricta.
type OutcomeTable struct {
	names []string
	best  map[string]OutcomeQuote
}

// NewOutcomeTable crea una tabla vacía.
func NewOutcomeTable() *OutcomeTable {
	return &OutcomeTable{best: make(map[string]OutcomeQuote)}
}

// Offer registra un quote en la tabla. Si el resultado ya existe solo
// reemplaza cuando el precio nuevo es estrictamente mayor.
func (t *OutcomeTable) Offer(q OutcomeQuote) {
	cur, ok := t.best[q.Name]
	if !ok {
		t.names = append(t.names, q.Name)
		t.best[q.Name] = q
		return
	}
	if q.Price > cur.Price {
		t.best[q.Name] = q
	}
}

// Len devuelve el número de resultados distintos en la tabla.
func (t *OutcomeTable) Len() int {
	return len(t.names)
}

// Best devuelve el mejor quote registrado para un resultado.
func (t *OutcomeTable) Best(name string) (OutcomeQuote, bool) {
	q, ok := t.best[name]
	return q, ok
}

// Outcomes devuelve los mejores quotes en orden de inserción.
func (t *OutcomeTable) Outcomes() []OutcomeQuote {
	out := make([]OutcomeQuote, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.best[name])
	}
	return out
}

// TotalImpliedProbability devuelve la suma de 1/price sobre la tabla.
func (t *OutcomeTable) TotalImpliedProbability() float64 {
	total := 0.0
	for _, name := range t.names {
		total += t.best[name].ImpliedProbability()
	}
	return total
}

// FindBestOddsPerOutcome agrupa los quotes por evento y resultado y devuelve
// la tabla de mejores precios por cada event key (event_id:market_key).
// El matching de nombres de resultado es string exacto — no hacemos fuzzy
// matching entre bookmakers, es una limitación deliberada.
// Función pura: no muta la entrada ni tiene efectos secundarios.
func FindBestOddsPerOutcome(markets []MarketQuote) map[string]*OutcomeTable {
	tables := make(map[string]*OutcomeTable)

	for _, m := range markets {
		key := m.EventKey()
		table, ok := tables[key]
		if !ok {
			table = NewOutcomeTable()
			tables[key] = table
		}
		for _, o := range m.Outcomes {
			table.Offer(o)
		}
	}

	return tables
}

// DetectArbitrage comprueba si existe arbitraje en una tabla de mejores precios.
// Hay arbitraje cuando la suma de probabilidades implícitas es estrictamente
// menor que 1: apostando proporcionalmente en todos los resultados el payout
// queda garantizado sea cual sea el ganador.
//
// Devuelve ok=false si hay menos de 2 resultados o si la suma es >= 1.
func DetectArbitrage(table *OutcomeTable) (profitMargin, totalImplied float64, ok bool) {
	if table == nil || table.Len() < 2 {
		return 0, 0, false
	}

	totalImplied = table.TotalImpliedProbability()
	if totalImplied >= 1 {
		return 0, totalImplied, false
	}

	return 1 - totalImplied, totalImplied, true
}

// FindArbitrageOpportunities escanea todos los quotes y devuelve las
// oportunidades con margen >= minProfitMargin, ordenadas por margen
// descendente (orden estable: a margen igual gana el evento detectado antes).
//
// La metadata del evento se toma del primer MarketQuote visto en el orden de
// entrada — asumimos que es consistente entre bookmakers para el mismo evento.
func FindArbitrageOpportunities(markets []MarketQuote, minProfitMargin float64) []ArbitrageOpportunity {
	tables := FindBestOddsPerOutcome(markets)

	// Metadata y orden de detección: primer quote visto por event key.
	metadata := make(map[string]MarketQuote, len(tables))
	eventKeys := make([]string, 0, len(tables))
	for _, m := range markets {
		key := m.EventKey()
		if _, seen := metadata[key]; !seen {
			metadata[key] = m
			eventKeys = append(eventKeys, key)
		}
	}

	opportunities := make([]ArbitrageOpportunity, 0)
	for _, key := range eventKeys {
		margin, totalImplied, ok := DetectArbitrage(tables[key])
		if !ok || margin < minProfitMargin {
			continue
		}

		meta := metadata[key]
		opportunities = append(opportunities, ArbitrageOpportunity{
			ID:                      uuid.NewString(),
			EventID:                 meta.EventID,
			SportKey:                meta.SportKey,
			SportTitle:              meta.SportTitle,
			HomeTeam:                meta.HomeTeam,
			AwayTeam:                meta.AwayTeam,
			CommenceTime:            meta.CommenceTime,
			MarketKey:               meta.MarketKey,
			ProfitMargin:            margin,
			TotalImpliedProbability: totalImplied,
			Outcomes:                tables[key].Outcomes(),
		})
	}

	SortByProfitMargin(opportunities)

	return opportunities
}

// SortByProfitMargin ordena in-place por margen descendente. Orden estable:
// a margen igual se conserva el orden de detección.
func SortByProfitMargin(opportunities []ArbitrageOpportunity) {
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitMargin > opportunities[j].ProfitMargin
	})
}

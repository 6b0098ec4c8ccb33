package domain

import "time"

// ArbitrageOpportunity es un evento donde los mejores precios entre
// bookmakers garantizan beneficio apostando en todos los resultados.
// Invariantes: TotalImpliedProbability < 1 estricto y len(Outcomes) >= 2.
//
// Stakes es nil hasta que el caller pide el reparto explícitamente — una
// oportunidad lleva el plan completo o no lleva ninguno, nunca uno a medias.
type ArbitrageOpportunity struct {
	ID                      string         `json:"id"`
	EventID                 string         `json:"event_id"`
	SportKey                string         `json:"sport_key"`
	SportTitle              string         `json:"sport_title"`
	HomeTeam                string         `json:"home_team"`
	AwayTeam                string         `json:"away_team"`
	CommenceTime            time.Time      `json:"commence_time"`
	MarketKey               string         `json:"market_key"`
	ProfitMargin            float64        `json:"profit_margin"`
	TotalImpliedProbability float64        `json:"total_implied_probability"`
	Outcomes                []OutcomeQuote `json:"outcomes"`
	Stakes                  *StakePlan     `json:"stakes,omitempty"`
}

// EventName devuelve el nombre del evento en formato "{away} @ {home}".
func (o ArbitrageOpportunity) EventName() string {
	return o.AwayTeam + " @ " + o.HomeTeam
}

// ProfitPercentage devuelve el margen como porcentaje (0.036 → 3.6).
func (o ArbitrageOpportunity) ProfitPercentage() float64 {
	return o.ProfitMargin * 100
}

// WithStakes devuelve una copia de la oportunidad con el plan de stakes
// calculado para el total dado.
func (o ArbitrageOpportunity) WithStakes(totalStake float64) ArbitrageOpportunity {
	plan := CalculateStakes(o.Outcomes, totalStake)
	o.Stakes = &plan
	return o
}

// ScanResult es el resultado completo de escanear un deporte.
type ScanResult struct {
	SportKey             string                 `json:"sport_key"`
	SportTitle           string                 `json:"sport_title"`
	ScanTime             time.Time              `json:"scan_time"`
	EventsScanned        int                    `json:"events_scanned"`
	OpportunitiesFound   int                    `json:"opportunities_found"`
	Opportunities        []ArbitrageOpportunity `json:"opportunities"`
	APIRequestsUsed      int                    `json:"api_requests_used"`
	APIRequestsRemaining *int                   `json:"api_requests_remaining,omitempty"`
}

// ScanRecord es una fila del histórico de scans persistido.
type ScanRecord struct {
	ID                 int64     `json:"id"`
	SportKey           string    `json:"sport_key"`
	SportTitle         string    `json:"sport_title"`
	ScanTime           time.Time `json:"scan_time"`
	EventsScanned      int       `json:"events_scanned"`
	OpportunitiesFound int       `json:"opportunities_found"`
	APIRequestsUsed    int       `json:"api_requests_used"`
}

// APIQuota es el estado best-effort de la cuota de requests del proveedor,
// extraído de los headers de la última respuesta. Punteros nil = desconocido.
type APIQuota struct {
	Used      *int `json:"used,omitempty"`
	Remaining *int `json:"remaining,omitempty"`
}

// UsageStats agrega el consumo de API registrado en un periodo.
type UsageStats struct {
	TotalUsed int  `json:"total_used"`
	Remaining *int `json:"requests_remaining,omitempty"`
}

package domain

import "time"

// DefaultMarketKey es el mercado head-to-head (moneyline), el único que
// escaneamos por defecto.
const DefaultMarketKey = "h2h"

// OutcomeQuote es el precio de UN bookmaker para UN resultado de un evento.
// Price es cuota decimal: stake × price = payout total si el resultado gana.
type OutcomeQuote struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Bookmaker string  `json:"bookmaker"`
}

// ImpliedProbability devuelve la probabilidad implícita de la cuota (1/price).
// Precios no positivos devuelven 0 — así un dato corrupto del upstream nunca
// contribuye a una señal de arbitraje.
func (o OutcomeQuote) ImpliedProbability() float64 {
	if o.Price <= 0 {
		return 0
	}
	return 1 / o.Price
}

// MarketQuote es el set completo de cuotas de UN bookmaker para un evento y
// tipo de mercado. Varios MarketQuote con el mismo EventKey pero distinto
// bookmaker representan el mismo evento subyacente.
type MarketQuote struct {
	EventID      string         `json:"event_id"`
	SportKey     string         `json:"sport_key"`
	SportTitle   string         `json:"sport_title"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	CommenceTime time.Time      `json:"commence_time"`
	MarketKey    string         `json:"market_key"`
	Outcomes     []OutcomeQuote `json:"outcomes"`
}

// EventKey devuelve la clave de agrupación event_id:market_key.
func (m MarketQuote) EventKey() string {
	key := m.MarketKey
	if key == "" {
		key = DefaultMarketKey
	}
	return m.EventID + ":" + key
}

// Sport es un deporte disponible en el proveedor de cuotas.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Bookmaker es una casa de apuestas soportada.
type Bookmaker struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Region string `json:"region"`
}

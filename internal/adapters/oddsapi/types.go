package oddsapi

// DTOs raw de The Odds API v4. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// sportInfo es un item de GET /sports.
type sportInfo struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// oddsEvent es un evento de GET /sports/{sport}/odds con las cuotas
// de todos los bookmakers.
type oddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

// oddsBookmaker es el bloque de un bookmaker dentro de un evento.
type oddsBookmaker struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	LastUpdate string       `json:"last_update"`
	Markets    []oddsMarket `json:"markets"`
}

// oddsMarket es un mercado (h2h, spreads...) de un bookmaker.
type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

// oddsOutcome es la cuota de un resultado.
type oddsOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

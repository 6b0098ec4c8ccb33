package oddsapi

import (
	"time"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// mapSports convierte los DTOs de /sports a domain.Sport.
func mapSports(raw []sportInfo) []domain.Sport {
	sports := make([]domain.Sport, 0, len(raw))
	for _, r := range raw {
		sports = append(sports, domain.Sport{
			Key:          r.Key,
			Group:        r.Group,
			Title:        r.Title,
			Description:  r.Description,
			Active:       r.Active,
			HasOutrights: r.HasOutrights,
		})
	}
	return sports
}

// mapOddsEvents aplana la respuesta de /odds: un MarketQuote por combinación
// evento × bookmaker × mercado, que es la forma que consume el detector.
func mapOddsEvents(raw []oddsEvent, sportKey string) []domain.MarketQuote {
	var markets []domain.MarketQuote

	for _, event := range raw {
		commence := parseCommenceTime(event.CommenceTime)

		for _, bookmaker := range event.Bookmakers {
			title := bookmaker.Title
			if title == "" {
				title = bookmaker.Key
			}

			for _, market := range bookmaker.Markets {
				key := market.Key
				if key == "" {
					key = domain.DefaultMarketKey
				}

				outcomes := make([]domain.OutcomeQuote, 0, len(market.Outcomes))
				for _, o := range market.Outcomes {
					outcomes = append(outcomes, domain.OutcomeQuote{
						Name:      o.Name,
						Price:     o.Price,
						Bookmaker: title,
					})
				}

				markets = append(markets, domain.MarketQuote{
					EventID:      event.ID,
					SportKey:     sportKey,
					SportTitle:   event.SportTitle,
					HomeTeam:     event.HomeTeam,
					AwayTeam:     event.AwayTeam,
					CommenceTime: commence,
					MarketKey:    key,
					Outcomes:     outcomes,
				})
			}
		}
	}

	return markets
}

// parseCommenceTime parsea el timestamp del evento. La API devuelve ISO 8601
// con sufijo Z; si no parsea usamos la hora actual como fallback defensivo.
func parseCommenceTime(raw string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

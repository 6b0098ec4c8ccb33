package oddsapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOddsEvents_Flattening(t *testing.T) {
	raw := []oddsEvent{
		{
			ID:           "ev1",
			SportTitle:   "NBA",
			CommenceTime: "2025-06-01T19:30:00Z",
			HomeTeam:     "Home",
			AwayTeam:     "Away",
			Bookmakers: []oddsBookmaker{
				{
					Key:   "draftkings",
					Title: "DraftKings",
					Markets: []oddsMarket{
						{Key: "h2h", Outcomes: []oddsOutcome{{Name: "Home", Price: 1.9}, {Name: "Away", Price: 2.0}}},
						{Key: "spreads", Outcomes: []oddsOutcome{{Name: "Home", Price: 1.91}}},
					},
				},
				{
					Key: "bovada", // sin title → usa la key
					Markets: []oddsMarket{
						{Outcomes: []oddsOutcome{{Name: "Home", Price: 1.85}}}, // sin key → h2h
					},
				},
			},
		},
	}

	markets := mapOddsEvents(raw, "basketball_nba")
	require.Len(t, markets, 3)

	assert.Equal(t, "h2h", markets[0].MarketKey)
	assert.Equal(t, "spreads", markets[1].MarketKey)
	assert.Equal(t, "DraftKings", markets[0].Outcomes[0].Bookmaker)

	assert.Equal(t, "h2h", markets[2].MarketKey)
	assert.Equal(t, "bovada", markets[2].Outcomes[0].Bookmaker)

	for _, m := range markets {
		assert.Equal(t, "basketball_nba", m.SportKey)
		assert.Equal(t, "ev1:"+m.MarketKey, m.EventKey())
	}
}

func TestParseCommenceTime(t *testing.T) {
	got := parseCommenceTime("2025-06-01T19:30:00Z")
	assert.Equal(t, time.Date(2025, 6, 1, 19, 30, 0, 0, time.UTC), got)

	got = parseCommenceTime("2025-06-01T19:30:00+02:00")
	assert.Equal(t, time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC), got)

	// Timestamp ilegible → fallback a ahora, nunca panic
	got = parseCommenceTime("garbage")
	assert.WithinDuration(t, time.Now().UTC(), got, time.Minute)
}

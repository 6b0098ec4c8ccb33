package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbscan/internal/adapters/oddsapi"
	"github.com/alejandrodnm/arbscan/internal/domain"
)

// --- fakes ---

type fakeProvider struct {
	sports    []domain.Sport
	sportsErr error
	remaining *int
}

func (f *fakeProvider) FetchSports(context.Context) ([]domain.Sport, error) {
	return f.sports, f.sportsErr
}

func (f *fakeProvider) FetchOdds(context.Context, string) ([]domain.MarketQuote, error) {
	return nil, nil
}

func (f *fakeProvider) FetchOddsFresh(context.Context, string) ([]domain.MarketQuote, error) {
	return nil, nil
}

func (f *fakeProvider) Quota() domain.APIQuota {
	return domain.APIQuota{Remaining: f.remaining}
}

type fakeStorage struct {
	scans []domain.ScanRecord
	opps  map[int64][]domain.ArbitrageOpportunity
	today domain.UsageStats
	month domain.UsageStats
}

func (f *fakeStorage) SaveScan(context.Context, domain.ScanResult) (int64, error) { return 1, nil }

func (f *fakeStorage) RecentScans(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	if limit < len(f.scans) {
		return f.scans[:limit], nil
	}
	return f.scans, nil
}

func (f *fakeStorage) OpportunitiesByScan(_ context.Context, scanID int64) ([]domain.ArbitrageOpportunity, error) {
	return f.opps[scanID], nil
}

func (f *fakeStorage) LogUsage(context.Context, string, int, *int) error { return nil }

func (f *fakeStorage) UsageToday(context.Context) (domain.UsageStats, error) { return f.today, nil }

func (f *fakeStorage) UsageMonth(context.Context) (domain.UsageStats, error) { return f.month, nil }

func (f *fakeStorage) Close() error { return nil }

type fakeScanner struct {
	result    domain.ScanResult
	err       error
	gotSport  string
	gotMargin float64
}

func (f *fakeScanner) ScanSport(_ context.Context, sportKey string, minProfitMargin float64) (domain.ScanResult, error) {
	f.gotSport = sportKey
	f.gotMargin = minProfitMargin
	return f.result, f.err
}

func newTestServer(provider *fakeProvider, storage *fakeStorage, scan *fakeScanner) *Server {
	cfg := Config{
		Sports:          map[string]string{"basketball_nba": "NBA"},
		Bookmakers:      map[string]string{"draftkings": "DraftKings", "betmgm": "BetMGM"},
		MinProfitMargin: 0.001,
	}
	return NewServer(cfg, provider, storage, scan)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "arbscan", body["service"])
}

func TestHandleSports_ActiveOnlyAndOverlay(t *testing.T) {
	provider := &fakeProvider{sports: []domain.Sport{
		{Key: "soccer_epl", Title: "EPL", Active: true},
		{Key: "basketball_nba", Title: "Basketball NBA", Active: true},
		{Key: "cricket_ipl", Title: "IPL", Active: false},
	}}
	s := newTestServer(provider, &fakeStorage{}, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/sports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sports []domain.Sport `json:"sports"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)

	// Orden estable por key y título de display para el deporte configurado
	assert.Equal(t, "basketball_nba", body.Sports[0].Key)
	assert.Equal(t, "NBA", body.Sports[0].Title)
	assert.Equal(t, "soccer_epl", body.Sports[1].Key)

	// active_only=false incluye el inactivo
	rec = doRequest(t, s, http.MethodGet, "/api/sports?active_only=false", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
}

func TestHandleSports_UpstreamError(t *testing.T) {
	provider := &fakeProvider{sportsErr: &oddsapi.APIError{StatusCode: 401, Message: "invalid api key"}}
	s := newTestServer(provider, &fakeStorage{}, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/sports", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestHandleBookmakers_Sorted(t *testing.T) {
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/bookmakers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Bookmakers []domain.Bookmaker `json:"bookmakers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Bookmakers, 2)
	assert.Equal(t, "betmgm", body.Bookmakers[0].Key)
	assert.Equal(t, "draftkings", body.Bookmakers[1].Key)
}

func TestHandleScan(t *testing.T) {
	scan := &fakeScanner{result: domain.ScanResult{
		SportKey:      "basketball_nba",
		SportTitle:    "NBA",
		ScanTime:      time.Now().UTC(),
		EventsScanned: 5,
	}}
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, scan)

	rec := doRequest(t, s, http.MethodGet, "/api/scan/basketball_nba?min_profit=0.02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "basketball_nba", scan.gotSport)
	assert.InDelta(t, 0.02, scan.gotMargin, 1e-9)

	var result domain.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 5, result.EventsScanned)
}

func TestHandleScan_DefaultMargin(t *testing.T) {
	scan := &fakeScanner{}
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, scan)

	rec := doRequest(t, s, http.MethodGet, "/api/scan/basketball_nba", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.001, scan.gotMargin, 1e-9)
}

func TestHandleScan_InvalidMargin(t *testing.T) {
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, &fakeScanner{})

	for _, q := range []string{"min_profit=abc", "min_profit=-0.1", "min_profit=1.5"} {
		rec := doRequest(t, s, http.MethodGet, "/api/scan/basketball_nba?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandleCalculate(t *testing.T) {
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, &fakeScanner{})

	body := `{
		"total_stake": 100,
		"outcomes": [
			{"name": "Team A", "price": 2.10, "bookmaker": "BookX"},
			{"name": "Team B", "price": 2.05, "bookmaker": "BookY"}
		]
	}`
	rec := doRequest(t, s, http.MethodPost, "/api/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan domain.StakePlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Stakes, 2)
	assert.InDelta(t, 49.40, plan.Stakes[0].Stake, 1e-9)
	assert.InDelta(t, 50.60, plan.Stakes[1].Stake, 1e-9)
	assert.InDelta(t, 3.73, plan.GuaranteedProfit, 1e-9)
}

func TestHandleCalculate_Validation(t *testing.T) {
	s := newTestServer(&fakeProvider{}, &fakeStorage{}, &fakeScanner{})

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{not json`},
		{"zero stake", `{"total_stake": 0, "outcomes": [{"name":"A","price":2.0},{"name":"B","price":2.1}]}`},
		{"one outcome", `{"total_stake": 100, "outcomes": [{"name":"A","price":2.0}]}`},
		{"bad price", `{"total_stake": 100, "outcomes": [{"name":"A","price":0},{"name":"B","price":2.1}]}`},
	}
	for _, tc := range cases {
		rec := doRequest(t, s, http.MethodPost, "/api/calculate", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
	}
}

func TestHandleUsage(t *testing.T) {
	remaining := 480
	provider := &fakeProvider{remaining: &remaining}
	storage := &fakeStorage{
		today: domain.UsageStats{TotalUsed: 4, Remaining: &remaining},
		month: domain.UsageStats{TotalUsed: 120, Remaining: &remaining},
	}
	s := newTestServer(provider, storage, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/usage", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Quota domain.APIQuota   `json:"quota"`
		Today domain.UsageStats `json:"today"`
		Month domain.UsageStats `json:"month"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Quota.Remaining)
	assert.Equal(t, 480, *body.Quota.Remaining)
	assert.Equal(t, 4, body.Today.TotalUsed)
	assert.Equal(t, 120, body.Month.TotalUsed)
}

func TestHandleHistory(t *testing.T) {
	storage := &fakeStorage{scans: []domain.ScanRecord{
		{ID: 3, SportKey: "basketball_nba"},
		{ID: 2, SportKey: "basketball_nba"},
		{ID: 1, SportKey: "soccer_epl"},
	}}
	s := newTestServer(&fakeProvider{}, storage, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/history?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Scans []domain.ScanRecord `json:"scans"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, int64(3), body.Scans[0].ID)

	rec = doRequest(t, s, http.MethodGet, "/api/history?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScanOpportunities(t *testing.T) {
	storage := &fakeStorage{opps: map[int64][]domain.ArbitrageOpportunity{
		7: {{ID: "opp-1", EventID: "ev1", ProfitMargin: 0.03}},
	}}
	s := newTestServer(&fakeProvider{}, storage, &fakeScanner{})

	rec := doRequest(t, s, http.MethodGet, "/api/history/7/opportunities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ScanID        int64                         `json:"scan_id"`
		Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
		Count         int                           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ScanID)
	assert.Equal(t, 1, body.Count)

	rec = doRequest(t, s, http.MethodGet, "/api/history/abc/opportunities", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

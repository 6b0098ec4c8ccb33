package oddsapi

// client.go — adapter HTTP para The Odds API v4.
//
// La cuota del tier gratuito son 500 requests/mes, así que el client hace
// tres cosas para no quemarla: cache TTL por firma de request, rate limiter
// token-bucket para frenar ráfagas (scan-all dispara un request por deporte),
// y tracking de los headers x-requests-remaining / x-requests-used que la
// API devuelve en cada respuesta.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

const (
	defaultBaseURL  = "https://api.the-odds-api.com/v4"
	defaultRegions  = "us,uk,eu,au"
	defaultCacheTTL = 5 * time.Minute

	// 1 req/s con burst de 3: de sobra para el free tier y evita que un
	// scan-all dispare todos los deportes de golpe.
	requestsPerSec = 1
	burstSize      = 3

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	headerRemaining = "x-requests-remaining"
	headerUsed      = "x-requests-used"
)

// APIError es el error tipado del proveedor. Distingue fallos de I/O y de
// autenticación del caso "no hay oportunidades", que nunca es un error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("odds api: %s (status %d)", e.Message, e.StatusCode)
	}
	return "odds api: " + e.Message
}

// Config contiene los parámetros del client.
type Config struct {
	BaseURL    string
	APIKey     string
	Regions    string        // regiones separadas por coma: us, uk, eu, au
	Markets    []string      // mercados a pedir (default: h2h)
	Bookmakers []string      // filtro opcional de bookmakers
	CacheTTL   time.Duration // TTL de la cache de respuestas
}

// Client implementa ports.OddsProvider contra The Odds API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	regions string
	markets []string
	books   []string
	limiter *rate.Limiter

	sportsCache *ttlCache[[]domain.Sport]
	oddsCache   *ttlCache[[]domain.MarketQuote]

	mu        sync.Mutex
	used      *int
	remaining *int
}

// NewClient crea un Client con la configuración dada, aplicando defaults
// para los campos vacíos.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Regions == "" {
		cfg.Regions = defaultRegions
	}
	if len(cfg.Markets) == 0 {
		cfg.Markets = []string{domain.DefaultMarketKey}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		regions:     cfg.Regions,
		markets:     cfg.Markets,
		books:       cfg.Bookmakers,
		limiter:     rate.NewLimiter(requestsPerSec, burstSize),
		sportsCache: newTTLCache[[]domain.Sport](cfg.CacheTTL),
		oddsCache:   newTTLCache[[]domain.MarketQuote](cfg.CacheTTL),
	}
}

// FetchSports devuelve los deportes disponibles, cacheados con TTL.
func (c *Client) FetchSports(ctx context.Context) ([]domain.Sport, error) {
	const cacheKey = "sports"
	if cached, ok := c.sportsCache.get(cacheKey); ok {
		return cached, nil
	}

	var raw []sportInfo
	if err := c.get(ctx, "/sports", nil, &raw); err != nil {
		return nil, fmt.Errorf("oddsapi.FetchSports: %w", err)
	}

	sports := mapSports(raw)
	c.sportsCache.set(cacheKey, sports)

	slog.Debug("sports fetched", "count", len(sports))
	return sports, nil
}

// FetchOdds devuelve las cuotas de un deporte, usando la cache TTL.
func (c *Client) FetchOdds(ctx context.Context, sportKey string) ([]domain.MarketQuote, error) {
	if cached, ok := c.oddsCache.get(c.oddsCacheKey(sportKey)); ok {
		return cached, nil
	}
	return c.FetchOddsFresh(ctx, sportKey)
}

// FetchOddsFresh fuerza un fetch sin cache y refresca la entrada cacheada.
func (c *Client) FetchOddsFresh(ctx context.Context, sportKey string) ([]domain.MarketQuote, error) {
	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", strings.Join(c.markets, ","))
	params.Set("oddsFormat", "decimal")
	if len(c.books) > 0 {
		params.Set("bookmakers", strings.Join(c.books, ","))
	}

	var raw []oddsEvent
	if err := c.get(ctx, "/sports/"+sportKey+"/odds", params, &raw); err != nil {
		return nil, fmt.Errorf("oddsapi.FetchOdds %s: %w", sportKey, err)
	}

	markets := mapOddsEvents(raw, sportKey)
	c.oddsCache.set(c.oddsCacheKey(sportKey), markets)

	slog.Debug("odds fetched",
		"sport", sportKey,
		"events", len(raw),
		"market_quotes", len(markets),
	)
	return markets, nil
}

// Quota devuelve el último estado de cuota reportado por la API.
func (c *Client) Quota() domain.APIQuota {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.APIQuota{Used: copyInt(c.used), Remaining: copyInt(c.remaining)}
}

// ClearCache vacía todas las caches del client.
func (c *Client) ClearCache() {
	c.sportsCache.clear()
	c.oddsCache.clear()
}

func (c *Client) oddsCacheKey(sportKey string) string {
	return "odds:" + sportKey + ":" + c.regions + ":" + strings.Join(c.markets, ",")
}

// get hace un GET autenticado con rate limiting, retries y tracking de cuota.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return &APIError{Message: "API key not configured (set ODDS_API_KEY)"}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return &APIError{Message: fmt.Sprintf("request failed after %d retries: %v", maxRetries, err)}
			}
			c.sleep(ctx, attempt)
			continue
		}

		c.updateQuota(resp.Header)

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Message: "invalid API key"}

		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt == maxRetries {
				return &APIError{StatusCode: resp.StatusCode, Message: "rate limit exceeded"}
			}
			slog.Warn("rate limited by odds api", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue

		case resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == maxRetries {
				return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("server error after %d retries", maxRetries)}
			}
			c.sleep(ctx, attempt)
			continue

		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return &APIError{Message: "decode response: " + err.Error()}
		}
		return nil
	}

	return &APIError{Message: fmt.Sprintf("exhausted %d retries", maxRetries)}
}

// updateQuota actualiza el tracking de cuota desde los headers de respuesta.
func (c *Client) updateQuota(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := h.Get(headerRemaining); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.remaining = &n
		}
	}
	if v := h.Get(headerUsed); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.used = &n
		}
	}
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

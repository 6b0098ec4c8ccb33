package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// handleHealth es el healthcheck del servicio.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "arbscan",
		"timestamp": time.Now().UTC(),
	})
}

// handleSports devuelve los deportes disponibles en el proveedor.
// Query params: active_only (default true).
func (s *Server) handleSports(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "active_only must be a boolean", nil)
			return
		}
		activeOnly = parsed
	}

	sports, err := s.provider.FetchSports(r.Context())
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	out := make([]domain.Sport, 0, len(sports))
	for _, sp := range sports {
		if activeOnly && !sp.Active {
			continue
		}
		// Los deportes que escaneamos llevan el nombre configurado
		if title, ok := s.cfg.Sports[sp.Key]; ok {
			sp.Title = title
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	respondJSON(w, http.StatusOK, map[string]any{
		"sports": out,
		"count":  len(out),
	})
}

// handleBookmakers devuelve las casas soportadas, orden estable por key.
func (s *Server) handleBookmakers(w http.ResponseWriter, r *http.Request) {
	keys := make([]string, 0, len(s.cfg.Bookmakers))
	for key := range s.cfg.Bookmakers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	books := make([]domain.Bookmaker, 0, len(keys))
	for _, key := range keys {
		books = append(books, domain.Bookmaker{Key: key, Title: s.cfg.Bookmakers[key]})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bookmakers": books,
		"count":      len(books),
	})
}

// handleScan ejecuta un scan on-demand de un deporte.
// Query params: min_profit en [0, 1] (default el configurado).
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	sportKey := chi.URLParam(r, "sportKey")
	if sportKey == "" {
		respondError(w, http.StatusBadRequest, "sport key is required", nil)
		return
	}

	minProfit := s.cfg.MinProfitMargin
	if v := r.URL.Query().Get("min_profit"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			respondError(w, http.StatusBadRequest, "min_profit must be a number between 0 and 1", nil)
			return
		}
		minProfit = parsed
	}

	result, err := s.scanner.ScanSport(r.Context(), sportKey, minProfit)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// calculateRequest es el cuerpo de POST /api/calculate.
type calculateRequest struct {
	Outcomes   []domain.OutcomeQuote `json:"outcomes"`
	TotalStake float64               `json:"total_stake"`
}

// handleCalculate reparte un stake total entre los resultados dados.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	if req.TotalStake <= 0 {
		respondError(w, http.StatusBadRequest, "total_stake must be positive", nil)
		return
	}
	if len(req.Outcomes) < 2 {
		respondError(w, http.StatusBadRequest, "at least 2 outcomes are required", nil)
		return
	}
	for _, o := range req.Outcomes {
		if o.Price <= 0 {
			respondError(w, http.StatusBadRequest, "outcome prices must be positive decimal odds", nil)
			return
		}
	}

	respondJSON(w, http.StatusOK, domain.CalculateStakes(req.Outcomes, req.TotalStake))
}

// handleUsage devuelve el consumo de cuota: headers del proveedor + agregados.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "usage tracking is not enabled", nil)
		return
	}

	today, err := s.storage.UsageToday(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read usage", err)
		return
	}
	month, err := s.storage.UsageMonth(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read usage", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"quota": s.provider.Quota(),
		"today": today,
		"month": month,
	})
}

// handleHistory devuelve los últimos scans. Query params: limit (default 10, max 100).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "history is not enabled", nil)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	scans, err := s.storage.RecentScans(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read scan history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"scans": scans,
		"count": len(scans),
	})
}

// handleScanOpportunities devuelve las oportunidades de un scan del histórico.
func (s *Server) handleScanOpportunities(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "history is not enabled", nil)
		return
	}

	scanID, err := strconv.ParseInt(chi.URLParam(r, "scanID"), 10, 64)
	if err != nil || scanID <= 0 {
		respondError(w, http.StatusBadRequest, "scan id must be a positive integer", nil)
		return
	}

	opps, err := s.storage.OpportunitiesByScan(r.Context(), scanID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read opportunities", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"scan_id":       scanID,
		"opportunities": opps,
		"count":         len(opps),
	})
}

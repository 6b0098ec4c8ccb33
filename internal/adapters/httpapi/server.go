package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alejandrodnm/arbscan/internal/domain"
	"github.com/alejandrodnm/arbscan/internal/ports"
)

// SportScanner ejecuta un scan on-demand de un deporte. Lo implementa el
// scanner de la capa de aplicación.
type SportScanner interface {
	ScanSport(ctx context.Context, sportKey string, minProfitMargin float64) (domain.ScanResult, error)
}

// Config contiene los parámetros del servidor HTTP.
type Config struct {
	Addr            string
	Sports          map[string]string // sport key → nombre para display
	Bookmakers      map[string]string // bookmaker key → nombre
	MinProfitMargin float64           // default para /api/scan
	CORSOrigins     []string
}

// Server expone el API REST: scan on-demand, cálculo de stakes, histórico
// y consumo de cuota.
type Server struct {
	cfg      Config
	provider ports.OddsProvider
	storage  ports.Storage
	scanner  SportScanner
}

// NewServer crea el servidor con sus dependencias. storage puede ser nil
// (los endpoints de histórico y usage devuelven 503).
func NewServer(cfg Config, provider ports.OddsProvider, storage ports.Storage, scanner SportScanner) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.MinProfitMargin <= 0 {
		cfg.MinProfitMargin = 0.001
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{cfg: cfg, provider: provider, storage: storage, scanner: scanner}
}

// Router monta todas las rutas con el stack de middleware estándar.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sports", s.handleSports)
		r.Get("/bookmakers", s.handleBookmakers)
		r.Get("/scan/{sportKey}", s.handleScan)
		r.Post("/calculate", s.handleCalculate)
		r.Get("/usage", s.handleUsage)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{scanID}/opportunities", s.handleScanOpportunities)
	})

	return r
}

// HTTPServer construye el *http.Server listo para ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

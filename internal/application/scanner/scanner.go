package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbscan/internal/domain"
	"github.com/alejandrodnm/arbscan/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval    time.Duration
	MinProfitMargin float64
	Sports          map[string]string // sport key → nombre para display
	Workers         int               // fetches concurrentes en ScanAll (0 = 4)
	DryRun          bool              // un solo ciclo y salir
}

// DefaultConfig devuelve una configuración razonable.
func DefaultConfig() Config {
	return Config{
		ScanInterval:    5 * time.Minute,
		MinProfitMargin: 0.001,
		Workers:         4,
	}
}

// Scanner orquesta el ciclo completo: fetch de cuotas → detección de
// arbitraje → persistencia → notificación. Todas las dependencias se
// inyectan — nada de singletons de proceso.
type Scanner struct {
	cfg      Config
	provider ports.OddsProvider
	storage  ports.Storage
	notifier ports.Notifier
}

// New crea un Scanner con las dependencias inyectadas. storage y notifier
// pueden ser nil (scan sin persistir, o sin output de consola).
func New(cfg Config, provider ports.OddsProvider, storage ports.Storage, notifier ports.Notifier) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Scanner{cfg: cfg, provider: provider, storage: storage, notifier: notifier}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"sports", len(s.cfg.Sports),
		"min_profit_margin", s.cfg.MinProfitMargin,
		"dry_run", s.cfg.DryRun,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// runCycle escanea todos los deportes configurados y notifica los resultados.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	results := s.ScanAll(ctx, s.cfg.MinProfitMargin)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, results); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	total := 0
	for _, r := range results {
		total += r.OpportunitiesFound
	}
	slog.Info("scan cycle complete",
		"sports", len(results),
		"opportunities", total,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// ScanSport escanea un deporte: fetch fresco de cuotas, detección de
// arbitraje y persistencia best-effort del resultado.
func (s *Scanner) ScanSport(ctx context.Context, sportKey string, minProfitMargin float64) (domain.ScanResult, error) {
	markets, err := s.provider.FetchOddsFresh(ctx, sportKey)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanner.ScanSport %s: %w", sportKey, err)
	}

	opportunities := domain.FindArbitrageOpportunities(markets, minProfitMargin)

	uniqueEvents := make(map[string]struct{}, len(markets))
	for _, m := range markets {
		uniqueEvents[m.EventID] = struct{}{}
	}

	quota := s.provider.Quota()
	result := domain.ScanResult{
		SportKey:             sportKey,
		SportTitle:           s.sportTitle(sportKey),
		ScanTime:             time.Now().UTC(),
		EventsScanned:        len(uniqueEvents),
		OpportunitiesFound:   len(opportunities),
		Opportunities:        opportunities,
		APIRequestsUsed:      1,
		APIRequestsRemaining: quota.Remaining,
	}

	if s.storage != nil {
		if _, err := s.storage.SaveScan(ctx, result); err != nil {
			slog.Warn("storage error", "sport", sportKey, "err", err)
		}
		if err := s.storage.LogUsage(ctx, "/sports/"+sportKey+"/odds", 1, quota.Remaining); err != nil {
			slog.Warn("usage log error", "sport", sportKey, "err", err)
		}
	}

	return result, nil
}

// ScanAll escanea todos los deportes configurados con un worker pool.
// Los deportes que fallan se saltan (quedan logueados), no abortan el ciclo.
func (s *Scanner) ScanAll(ctx context.Context, minProfitMargin float64) []domain.ScanResult {
	keys := s.sportKeys()
	return s.scanSportsConcurrent(ctx, keys, minProfitMargin)
}

// sportTitle devuelve el nombre de display configurado, o la key tal cual.
func (s *Scanner) sportTitle(sportKey string) string {
	if title, ok := s.cfg.Sports[sportKey]; ok {
		return title
	}
	return sportKey
}

// sportKeys devuelve las keys configuradas en orden estable.
func (s *Scanner) sportKeys() []string {
	keys := make([]string, 0, len(s.cfg.Sports))
	for key := range s.cfg.Sports {
		keys = append(keys, key)
	}
	sortStrings(keys)
	return keys
}

package scanner

// concurrent.go — worker pool para escanear varios deportes en paralelo.
//
// El rate limiter del provider controla el ritmo real de requests; aquí solo
// acotamos cuántos fetches van en vuelo a la vez para que un scan-all no
// acapare conexiones.

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// scanSportsConcurrent escanea los deportes dados con cfg.Workers goroutines
// y devuelve los resultados en el orden de entrada de las keys.
func (s *Scanner) scanSportsConcurrent(ctx context.Context, sportKeys []string, minProfitMargin float64) []domain.ScanResult {
	if len(sportKeys) == 0 {
		return nil
	}

	workers := s.cfg.Workers
	if workers > len(sportKeys) {
		workers = len(sportKeys)
	}

	type indexed struct {
		idx    int
		result domain.ScanResult
	}

	workCh := make(chan int, len(sportKeys))
	resultCh := make(chan indexed, len(sportKeys))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				key := sportKeys[idx]
				result, err := s.ScanSport(ctx, key, minProfitMargin)
				if err != nil {
					// Un deporte que falla no tumba el ciclo entero
					slog.Warn("sport scan failed, skipping", "sport", key, "err", err)
					continue
				}
				resultCh <- indexed{idx: idx, result: result}
			}
		}()
	}

	for idx := range sportKeys {
		workCh <- idx
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]indexed, 0, len(sportKeys))
	for r := range resultCh {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].idx < results[j].idx })

	out := make([]domain.ScanResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.result)
	}
	return out
}

// sortStrings ordena in-place; separado para no importar sort en dos sitios.
func sortStrings(keys []string) {
	sort.Strings(keys)
}

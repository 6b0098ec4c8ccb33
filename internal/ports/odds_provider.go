package ports

import (
	"context"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// OddsProvider obtiene deportes y cuotas del proveedor de datos upstream.
// El core solo necesita esto: una colección fresca o cacheada de MarketQuote
// por deporte, y el estado best-effort de la cuota de requests.
type OddsProvider interface {
	// FetchSports devuelve los deportes disponibles (respuesta cacheada con TTL).
	FetchSports(ctx context.Context) ([]domain.Sport, error)

	// FetchOdds devuelve las cuotas actuales de un deporte, usando la cache
	// TTL si la entrada sigue viva.
	FetchOdds(ctx context.Context, sportKey string) ([]domain.MarketQuote, error)

	// FetchOddsFresh fuerza un fetch sin cache. Cada scan usa datos frescos.
	FetchOddsFresh(ctx context.Context, sportKey string) ([]domain.MarketQuote, error)

	// Quota devuelve el último estado conocido de la cuota de requests,
	// extraído de los headers de respuesta del proveedor.
	Quota() domain.APIQuota
}

package ports

import (
	"context"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// Notifier presenta los resultados de un ciclo de escaneo al usuario.
type Notifier interface {
	// Notify muestra los resultados por deporte, con las oportunidades
	// ya ordenadas por margen descendente.
	Notify(ctx context.Context, results []domain.ScanResult) error
}

package ports

import (
	"context"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

// Storage persiste el histórico de scans y el consumo de API.
type Storage interface {
	// SaveScan persiste un scan con sus oportunidades y devuelve el scan ID.
	SaveScan(ctx context.Context, result domain.ScanResult) (int64, error)

	// RecentScans devuelve los últimos scans, más reciente primero.
	RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// OpportunitiesByScan devuelve las oportunidades de un scan concreto,
	// ordenadas por margen descendente.
	OpportunitiesByScan(ctx context.Context, scanID int64) ([]domain.ArbitrageOpportunity, error)

	// LogUsage registra una llamada al proveedor para el tracking de cuota.
	LogUsage(ctx context.Context, endpoint string, requestsUsed int, remaining *int) error

	// UsageToday devuelve el consumo agregado de hoy.
	UsageToday(ctx context.Context) (domain.UsageStats, error)

	// UsageMonth devuelve el consumo agregado del mes en curso.
	UsageMonth(ctx context.Context) (domain.UsageStats, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}

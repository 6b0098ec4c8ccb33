package storage

// sqlite.go — histórico de scans y tracking de consumo de API.
//
// Tres tablas:
//   - `scan_history`: una fila por scan (deporte, eventos, oportunidades).
//   - `opportunities`: una fila por oportunidad detectada, con los mejores
//     precios serializados como JSON y FK al scan que la encontró.
//   - `api_usage`: una fila por request al proveedor, para vigilar la cuota
//     mensual del free tier.
//
// Prune automático al arrancar: scans (y sus oportunidades) > 90 días.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/arbscan/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_history (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    sport_key           TEXT     NOT NULL,
    sport_title         TEXT     NOT NULL,
    scan_time           DATETIME NOT NULL,
    events_scanned      INTEGER  NOT NULL DEFAULT 0,
    opportunities_found INTEGER  NOT NULL DEFAULT 0,
    api_requests_used   INTEGER  NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS opportunities (
    id             TEXT PRIMARY KEY,
    scan_id        INTEGER NOT NULL,
    event_id       TEXT    NOT NULL,
    sport_key      TEXT    NOT NULL,
    sport_title    TEXT    NOT NULL,
    home_team      TEXT    NOT NULL,
    away_team      TEXT    NOT NULL,
    commence_time  DATETIME,
    market_key     TEXT    NOT NULL DEFAULT 'h2h',
    profit_margin  REAL    NOT NULL,
    total_implied  REAL    NOT NULL,
    outcomes_json  TEXT    NOT NULL,
    created_at     DATETIME NOT NULL,
    FOREIGN KEY (scan_id) REFERENCES scan_history(id)
);

CREATE TABLE IF NOT EXISTS api_usage (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp          DATETIME NOT NULL,
    endpoint           TEXT     NOT NULL,
    requests_used      INTEGER  NOT NULL DEFAULT 1,
    requests_remaining INTEGER
);

CREATE INDEX IF NOT EXISTS idx_scan_time  ON scan_history(scan_time DESC);
CREATE INDEX IF NOT EXISTS idx_opp_scan   ON opportunities(scan_id);
CREATE INDEX IF NOT EXISTS idx_opp_margin ON opportunities(profit_margin DESC);
CREATE INDEX IF NOT EXISTS idx_usage_ts   ON api_usage(timestamp);
`

// retentionScans es la retención del histórico — más que de sobra para
// revisar qué encontró el scanner y cuándo.
const retentionScans = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveScan persiste el scan y sus oportunidades en una transacción.
func (s *SQLiteStorage) SaveScan(ctx context.Context, result domain.ScanResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveScan: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scan_history
			(sport_key, sport_title, scan_time, events_scanned, opportunities_found, api_requests_used)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.SportKey,
		result.SportTitle,
		result.ScanTime.UTC(),
		result.EventsScanned,
		result.OpportunitiesFound,
		result.APIRequestsUsed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveScan: insert scan: %w", err)
	}

	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.SaveScan: last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities
			(id, scan_id, event_id, sport_key, sport_title, home_team, away_team,
			 commence_time, market_key, profit_margin, total_implied, outcomes_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveScan: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, opp := range result.Opportunities {
		outcomesJSON, err := json.Marshal(opp.Outcomes)
		if err != nil {
			return 0, fmt.Errorf("storage.SaveScan: marshal outcomes: %w", err)
		}

		marketKey := opp.MarketKey
		if marketKey == "" {
			marketKey = domain.DefaultMarketKey
		}

		if _, err := stmt.ExecContext(ctx,
			opp.ID,
			scanID,
			opp.EventID,
			opp.SportKey,
			opp.SportTitle,
			opp.HomeTeam,
			opp.AwayTeam,
			opp.CommenceTime.UTC(),
			marketKey,
			opp.ProfitMargin,
			opp.TotalImpliedProbability,
			string(outcomesJSON),
			now,
		); err != nil {
			return 0, fmt.Errorf("storage.SaveScan: insert opportunity %s: %w", opp.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.SaveScan: commit: %w", err)
	}
	return scanID, nil
}

// RecentScans devuelve los últimos scans, más reciente primero.
func (s *SQLiteStorage) RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sport_key, sport_title, scan_time,
		       events_scanned, opportunities_found, api_requests_used
		FROM scan_history
		ORDER BY scan_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentScans: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ScanRecord, 0, limit)
	for rows.Next() {
		var r domain.ScanRecord
		if err := rows.Scan(&r.ID, &r.SportKey, &r.SportTitle, &r.ScanTime,
			&r.EventsScanned, &r.OpportunitiesFound, &r.APIRequestsUsed); err != nil {
			return nil, fmt.Errorf("storage.RecentScans: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// OpportunitiesByScan devuelve las oportunidades de un scan, por margen descendente.
func (s *SQLiteStorage) OpportunitiesByScan(ctx context.Context, scanID int64) ([]domain.ArbitrageOpportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, sport_key, sport_title, home_team, away_team,
		       commence_time, market_key, profit_margin, total_implied, outcomes_json
		FROM opportunities
		WHERE scan_id = ?
		ORDER BY profit_margin DESC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("storage.OpportunitiesByScan: %w", err)
	}
	defer rows.Close()

	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var opp domain.ArbitrageOpportunity
		var outcomesJSON string

		if err := rows.Scan(&opp.ID, &opp.EventID, &opp.SportKey, &opp.SportTitle,
			&opp.HomeTeam, &opp.AwayTeam, &opp.CommenceTime, &opp.MarketKey,
			&opp.ProfitMargin, &opp.TotalImpliedProbability, &outcomesJSON); err != nil {
			return nil, fmt.Errorf("storage.OpportunitiesByScan: scan row: %w", err)
		}

		if err := json.Unmarshal([]byte(outcomesJSON), &opp.Outcomes); err != nil {
			return nil, fmt.Errorf("storage.OpportunitiesByScan: unmarshal outcomes: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// LogUsage registra una request al proveedor.
func (s *SQLiteStorage) LogUsage(ctx context.Context, endpoint string, requestsUsed int, remaining *int) error {
	var rem sql.NullInt64
	if remaining != nil {
		rem = sql.NullInt64{Int64: int64(*remaining), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO api_usage (timestamp, endpoint, requests_used, requests_remaining)
		VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), endpoint, requestsUsed, rem,
	); err != nil {
		return fmt.Errorf("storage.LogUsage: %w", err)
	}
	return nil
}

// UsageToday agrega el consumo registrado hoy (UTC).
func (s *SQLiteStorage) UsageToday(ctx context.Context) (domain.UsageStats, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.usageSince(ctx, start)
}

// UsageMonth agrega el consumo del mes en curso (UTC).
func (s *SQLiteStorage) UsageMonth(ctx context.Context) (domain.UsageStats, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.usageSince(ctx, start)
}

// usageSince agrega desde el inicio del periodo. El límite se calcula en Go:
// el driver guarda time.Time como RFC3339 UTC con nanosegundos, formato que
// date()/strftime() de SQLite no parsean pero que compara bien como texto.
// El límite se liga como prefijo sin sufijo de zona para que los timestamps
// con fracción de segundo en el instante exacto del corte también entren.
func (s *SQLiteStorage) usageSince(ctx context.Context, since time.Time) (domain.UsageStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(requests_used), 0), MIN(requests_remaining)
		FROM api_usage
		WHERE timestamp >= ?`, since.UTC().Format("2006-01-02T15:04:05"))

	var stats domain.UsageStats
	var remaining sql.NullInt64
	if err := row.Scan(&stats.TotalUsed, &remaining); err != nil {
		return domain.UsageStats{}, fmt.Errorf("storage.usage: %w", err)
	}
	if remaining.Valid {
		n := int(remaining.Int64)
		stats.Remaining = &n
	}
	return stats, nil
}

// Close cierra la conexión.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra scans (con sus oportunidades) y usage fuera de retención.
// Best-effort: un fallo aquí no impide arrancar.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionScans)

	s.db.ExecContext(ctx,
		`DELETE FROM opportunities WHERE scan_id IN
			(SELECT id FROM scan_history WHERE scan_time < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM scan_history WHERE scan_time < ?`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM api_usage WHERE timestamp < ?`, cutoff)
}

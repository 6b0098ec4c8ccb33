package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla el comportamiento del scanner.
type ScannerConfig struct {
	IntervalSeconds int               `yaml:"interval_seconds"`
	MinProfitMargin float64           `yaml:"min_profit_margin"` // 0.001 = 0.1%
	Bankroll        float64           `yaml:"bankroll"`          // stake total para el reparto de ejemplo
	Workers         int               `yaml:"workers"`
	Sports          map[string]string `yaml:"sports"` // sport key → nombre para display
}

// APIConfig contiene los parámetros del proveedor de cuotas.
type APIConfig struct {
	BaseURL         string   `yaml:"base_url"`
	Key             string   `yaml:"key"` // normalmente via ODDS_API_KEY
	Regions         string   `yaml:"regions"`
	Markets         []string `yaml:"markets"`
	Bookmakers      []string `yaml:"bookmakers"` // vacío = todos los de las regiones
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// LoadOrDefault carga el YAML si existe; si no, arranca con defaults + env.
// Permite correr con solo ODDS_API_KEY exportada, sin archivo de config.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = godotenv.Load()
		var cfg Config
		applyEnvOverrides(&cfg)
		setDefaults(&cfg)
		return &cfg, nil
	}
	return Load(path)
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// CacheTTL devuelve el TTL de la cache de cuotas como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 300
	}
	if cfg.Scanner.MinProfitMargin <= 0 {
		cfg.Scanner.MinProfitMargin = 0.001
	}
	if cfg.Scanner.Bankroll <= 0 {
		cfg.Scanner.Bankroll = 100
	}
	if cfg.Scanner.Workers <= 0 {
		cfg.Scanner.Workers = 4
	}
	if len(cfg.Scanner.Sports) == 0 {
		cfg.Scanner.Sports = DefaultSports()
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.the-odds-api.com/v4"
	}
	if cfg.API.Regions == "" {
		cfg.API.Regions = "us,uk,eu,au"
	}
	if len(cfg.API.Markets) == 0 {
		cfg.API.Markets = []string{"h2h"}
	}
	if cfg.API.CacheTTLSeconds <= 0 {
		cfg.API.CacheTTLSeconds = 300
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "arbitrage.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// DefaultSports devuelve los deportes escaneados por defecto.
func DefaultSports() map[string]string {
	return map[string]string{
		"americanfootball_nfl":      "NFL",
		"basketball_nba":            "NBA",
		"baseball_mlb":              "MLB",
		"icehockey_nhl":             "NHL",
		"soccer_epl":                "Premier League",
		"soccer_spain_la_liga":      "La Liga",
		"soccer_uefa_champs_league": "Champions League",
		"mma_mixed_martial_arts":    "MMA",
		"tennis_atp_us_open":        "ATP US Open",
	}
}

// DefaultBookmakers devuelve las casas soportadas con su nombre de display.
func DefaultBookmakers() map[string]string {
	return map[string]string{
		"draftkings":    "DraftKings",
		"fanduel":       "FanDuel",
		"betmgm":        "BetMGM",
		"caesars":       "Caesars",
		"pointsbetus":   "PointsBet (US)",
		"betrivers":     "BetRivers",
		"bovada":        "Bovada",
		"mybookieag":    "MyBookie.ag",
		"betfair_ex_uk": "Betfair Exchange (UK)",
		"pinnacle":      "Pinnacle",
		"williamhill":   "William Hill",
		"unibet_eu":     "Unibet (EU)",
	}
}

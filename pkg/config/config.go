package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	ERP   ERPConfig
	Cache CacheConfig
	Trace TraceConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ERPConfig conexión al ERP remoto (JSON-RPC).
type ERPConfig struct {
	URL      string
	DB       string
	User     string
	Password string
	Timeout  time.Duration
}

// CacheConfig almacenamiento en disco del índice de trazabilidad.
type CacheConfig struct {
	Path        string // directorio BadgerDB
	InMemory    bool   // true = sin persistencia (tests)
	RefreshCron string // expresión cron del refresco incremental
}

// TraceConfig parámetros del motor de trazabilidad.
type TraceConfig struct {
	VendorsLocationID   int64 // ubicación virtual de proveedores
	CustomersLocationID int64 // ubicación virtual de clientes
	MaxDepth            int   // tope de profundidad en recorridos del índice
	MaxIterations       int   // tope de iteraciones del encadenamiento
	FetchLimit          int   // límite por consulta al ERP
	ExcludedRefPatterns []string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, ERP_URL, CACHE_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "trazabilidad-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		ERP: ERPConfig{
			URL:      getString(v, "ERP_URL", "http://localhost:8069"),
			DB:       getString(v, "ERP_DB", ""),
			User:     getString(v, "ERP_USER", ""),
			Password: getString(v, "ERP_PASSWORD", ""),
			Timeout:  time.Duration(getInt(v, "ERP_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Cache: CacheConfig{
			Path:        getString(v, "CACHE_PATH", "./data/indice"),
			InMemory:    getBool(v, "CACHE_IN_MEMORY", false),
			RefreshCron: getString(v, "REFRESH_CRON", "@every 10m"),
		},
		Trace: TraceConfig{
			VendorsLocationID:   int64(getInt(v, "VENDORS_LOCATION_ID", 4)),
			CustomersLocationID: int64(getInt(v, "CUSTOMERS_LOCATION_ID", 5)),
			MaxDepth:            getInt(v, "TRACE_MAX_DEPTH", 50),
			MaxIterations:       getInt(v, "TRACE_MAX_ITERATIONS", 50),
			FetchLimit:          getInt(v, "TRACE_FETCH_LIMIT", 2000),
			ExcludedRefPatterns: getStringList(v, "EXCLUDED_REF_PATTERNS", []string{"RF/INT"}),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

// getStringList lee una lista separada por comas ("RF/INT,RF/AJ").
func getStringList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.Split(v.GetString(key), ",")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

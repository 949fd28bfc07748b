package config

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

type Config struct {
	HTTPAddr       string
	AllowedOrigins []string
	CSRFKey        []byte
	SecureCookies  bool

	StoreDriver StoreDriver
	SQLiteDSN   string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	SessionTTL time.Duration
	LogDir     string
	LogLevel   string
	Footer     string
}

const defaultFooter = "---\n\nMade by 🎓 Bhaskar Ghosh"

// SetDefaults registers every key. AutomaticEnv only resolves keys viper
// already knows about.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("csrf_key", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("store_driver", string(StoreMemory))
	v.SetDefault("sqlite_dsn", "file::memory:?cache=shared")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "gradecalc")
	v.SetDefault("db_port", "5432")
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("log_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("footer_markdown", defaultFooter)
}

// New returns a viper instance reading upper-cased environment variables,
// after loading an optional .env file.
func New() *viper.Viper {
	// a missing .env is fine; the environment alone is enough
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:      v.GetString("http_addr"),
		SecureCookies: v.GetBool("secure_cookies"),
		StoreDriver:   StoreDriver(strings.ToLower(v.GetString("store_driver"))),
		SQLiteDSN:     v.GetString("sqlite_dsn"),
		DBHost:        v.GetString("db_host"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		DBPort:        v.GetString("db_port"),
		SessionTTL:    v.GetDuration("session_ttl"),
		LogDir:        v.GetString("log_dir"),
		LogLevel:      v.GetString("log_level"),
		Footer:        v.GetString("footer_markdown"),
	}

	for _, o := range strings.Split(v.GetString("allowed_origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return Config{}, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}

	key := v.GetString("csrf_key")
	switch {
	case key == "":
		cfg.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(cfg.CSRFKey); err != nil {
			return Config{}, fmt.Errorf("generate csrf key: %w", err)
		}
	case len(key) != 32:
		return Config{}, fmt.Errorf("CSRF_KEY must be 32 bytes, got %d", len(key))
	default:
		cfg.CSRFKey = []byte(key)
	}

	return cfg, nil
}

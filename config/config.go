package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	NSE   NSEConfig   `mapstructure:"nse"`
	Cache CacheConfig `mapstructure:"cache"`
	Log   LogConfig   `mapstructure:"log"`
}

// NSEConfig defines how the engine talks to the provider.
type NSEConfig struct {
	ChartingBaseURL  string        `mapstructure:"charting_base_url"` // charting API host (masters + historical data)
	SiteBaseURL      string        `mapstructure:"site_base_url"`     // main site host, used for the cookie handshake
	Timeout          time.Duration `mapstructure:"timeout"`
	SessionMaxAge    time.Duration `mapstructure:"session_max_age"`   // a session older than this is renewed before use
	FetchConcurrency int           `mapstructure:"fetch_concurrency"` // max parallel sub-range fetches
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`  // 0 disables the periodic catalog refresh
}

// CacheConfig defines the optional on-disk catalog cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // sqlite file path
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	v.SetDefault("nse.charting_base_url", "https://charting.nseindia.com")
	v.SetDefault("nse.site_base_url", "https://www.nseindia.com")
	v.SetDefault("nse.timeout", 10*time.Second)
	v.SetDefault("nse.session_max_age", 10*time.Minute)
	v.SetDefault("nse.fetch_concurrency", 4)

	// TODO: env path
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., NSE_SITE_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

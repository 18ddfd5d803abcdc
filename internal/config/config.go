package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	VersionFile string `yaml:"version_file"`
	Timezone    string `yaml:"timezone"`
	CityName    string `yaml:"city_name"`

	// DBEndpoint is the raw host or host:port of the dependency probed by /readiness.
	DBEndpoint string `yaml:"db_endpoint"`
	// DBUsername and DBPassword are accepted but not used by the TCP check.
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`

	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	TrustProxy     bool    `yaml:"trust_proxy"`
	ReadinessRate  float64 `yaml:"readiness_rate"`
	ReadinessBurst int     `yaml:"readiness_burst"`
}

func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		VersionFile:    "version.txt",
		Timezone:       "Europe/Belgrade",
		CityName:       "Beograd",
		ProbeTimeout:   2 * time.Second,
		ReadinessRate:  20,
		ReadinessBurst: 40,
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// the environment, in that order.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if listen := os.Getenv("LISTEN_ADDR"); listen != "" {
		cfg.ListenAddr = listen
	}

	if versionFile := os.Getenv("VERSION_FILE"); versionFile != "" {
		cfg.VersionFile = versionFile
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}

	if city := os.Getenv("CITY_NAME"); city != "" {
		cfg.CityName = city
	}

	// An empty DB_ENDPOINT is kept as empty: it means "not configured".
	if endpoint, ok := os.LookupEnv("DB_ENDPOINT"); ok {
		cfg.DBEndpoint = endpoint
	}
	if user, ok := os.LookupEnv("DB_USERNAME"); ok {
		cfg.DBUsername = user
	}
	if pass, ok := os.LookupEnv("DB_PASSWORD"); ok {
		cfg.DBPassword = pass
	}

	if v := os.Getenv("PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PROBE_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return errors.New("invalid PROBE_TIMEOUT: must be positive")
		}
		cfg.ProbeTimeout = d
	}

	if os.Getenv("TRUST_PROXY") == "true" {
		cfg.TrustProxy = true
	}

	if v := os.Getenv("READINESS_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid READINESS_RATE: %w", err)
		}
		cfg.ReadinessRate = r
	}

	if v := os.Getenv("READINESS_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid READINESS_BURST: %w", err)
		}
		cfg.ReadinessBurst = b
	}

	return nil
}

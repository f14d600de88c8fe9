package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		Dir                string `yaml:"dir"`
		BookingsFile       string `yaml:"bookings_file"`
		AccountsFile       string `yaml:"accounts_file"`
		LockTimeoutSeconds int    `yaml:"lock_timeout_seconds"`
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		TTLHours int `yaml:"ttl_hours"`
	} `yaml:"session"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute"`
		Burst          int `yaml:"burst"`
	} `yaml:"ratelimit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data"
	}
	if cfg.Storage.BookingsFile == "" {
		cfg.Storage.BookingsFile = "cupos.xlsx"
	}
	if cfg.Storage.AccountsFile == "" {
		cfg.Storage.AccountsFile = "usuarios.xlsx"
	}

	if err = os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) LockTimeout() time.Duration {
	if c.Storage.LockTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Storage.LockTimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Session.TTLHours) * time.Hour
}

package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	Development         bool   `mapstructure:"development"`
}

type MongoCfg struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type S3Cfg struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	Endpoint   string `mapstructure:"endpoint"`
	PublicRead bool   `mapstructure:"public_read"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

type CleanupCfg struct {
	Enabled       bool   `mapstructure:"enabled"`
	Cron          string `mapstructure:"cron"`
	WindowMinutes int    `mapstructure:"window_minutes"`
}

type UploadCfg struct {
	MaxBytes      int64   `mapstructure:"max_bytes"`
	RatePerMinute float64 `mapstructure:"rate_per_minute"`
	RateBurst     int     `mapstructure:"rate_burst"`
}

type Config struct {
	Server  ServerCfg  `mapstructure:"server"`
	Mongo   MongoCfg   `mapstructure:"mongo"`
	S3      S3Cfg      `mapstructure:"s3"`
	Cleanup CleanupCfg `mapstructure:"cleanup"`
	Upload  UploadCfg  `mapstructure:"upload"`
	// Derived
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	InactivityWindow time.Duration
}

// Load reads the YAML config at path and applies APP_ env overrides
// (APP_SERVER_PORT, APP_MONGO_URI, ...). A missing file is not fatal when
// the environment supplies everything needed.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "deaddrop"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "messages"
	}
	if cfg.Cleanup.WindowMinutes == 0 {
		cfg.Cleanup.WindowMinutes = 120
	}
	if cfg.Cleanup.Cron == "" {
		cfg.Cleanup.Cron = "*/15 * * * *"
	}
	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = 50 * 1024 * 1024
	}
	if cfg.Upload.RatePerMinute == 0 {
		cfg.Upload.RatePerMinute = 30
	}
	if cfg.Upload.RateBurst == 0 {
		cfg.Upload.RateBurst = 10
	}

	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.InactivityWindow = time.Duration(cfg.Cleanup.WindowMinutes) * time.Minute
	return &cfg, nil
}

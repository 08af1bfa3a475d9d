package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceDatabase = "db"
	SourceMirror   = "mirror"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`

	DataSource    string        `mapstructure:"DATA_SOURCE"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	MirrorBaseURL string        `mapstructure:"MIRROR_BASE_URL"`
	MirrorFolder  string        `mapstructure:"MIRROR_FOLDER"`
	SnapshotTTL   time.Duration `mapstructure:"SNAPSHOT_TTL"`
	ForceReload   bool          `mapstructure:"FORCE_RELOAD"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("DATA_SOURCE", SourceDatabase)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIRROR_BASE_URL", "")
	v.SetDefault("MIRROR_FOLDER", "")
	v.SetDefault("SNAPSHOT_TTL", "10m")
	v.SetDefault("FORCE_RELOAD", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.DataSource {
	case SourceDatabase:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=%s", SourceDatabase)
		}
	case SourceMirror:
		if cfg.MirrorBaseURL == "" {
			return fmt.Errorf("MIRROR_BASE_URL is required when DATA_SOURCE=%s", SourceMirror)
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceDatabase, SourceMirror, cfg.DataSource)
	}
	return nil
}

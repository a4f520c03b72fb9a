package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Export   ExportConfig   `mapstructure:"export"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	// Enabled turns on uploading rendered exports; without it exports are
	// only returned inline.
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type ExportConfig struct {
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

// PlannerConfig holds the thresholds used when an athlete has none.
type PlannerConfig struct {
	DefaultThresholdPaceSecPerKm float64 `mapstructure:"default_threshold_pace_sec_per_km"`
	DefaultThresholdHrBpm        int     `mapstructure:"default_threshold_hr_bpm"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	v.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	// Every key needs a default (or a file entry) for AutomaticEnv to reach it on Unmarshal.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "spartan_trainer")
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "spartan-exports")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("export.url_expiry", "15m")
	v.SetDefault("planner.default_threshold_pace_sec_per_km", 330)
	v.SetDefault("planner.default_threshold_hr_bpm", 165)
	v.SetDefault("sqlite.path", "spartan.db")

	// --- Read Config File ---
	err = v.ReadInConfig()
	// A missing config file is fine; defaults and env vars still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// viper parses duration strings ("15m") straight into time.Duration fields.
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}

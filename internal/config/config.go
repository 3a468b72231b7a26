package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the dataset files.
type DataConfig struct {
	Driver   string   `yaml:"driver" mapstructure:"driver"` // fs, s3, or memory
	Dir      string   `yaml:"dir" mapstructure:"dir"`       // fs driver root
	Manifest string   `yaml:"manifest" mapstructure:"manifest"`
	S3       S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures the S3 dataset source.
type S3Config struct {
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	Region          string `yaml:"region" mapstructure:"region"`
	Prefix          string `yaml:"prefix" mapstructure:"prefix"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"` // optional, for MinIO
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style" mapstructure:"path_style"`
}

// FetchConfig configures downloading the dataset files from the publisher.
type FetchConfig struct {
	SeriesURL   string  `yaml:"series_url" mapstructure:"series_url"`
	SummaryURL  string  `yaml:"summary_url" mapstructure:"summary_url"`
	TechURL     string  `yaml:"tech_url" mapstructure:"tech_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ExportConfig configures workbook and chart output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MINERALBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.driver", "fs")
	v.SetDefault("data.dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("fetch.user_agent", "mineralboard/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 2)
	v.SetDefault("export.dir", "exports")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode depends on, so a bad value fails
// with a config message instead of surfacing later as a loader or listen
// error. Data-source fields are checked in every mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Data.Driver {
	case "", "fs", "s3", "memory":
	default:
		problems = append(problems, fmt.Sprintf("data.driver must be fs, s3, or memory (got %q)", c.Data.Driver))
	}
	if c.Data.Driver == "s3" && c.Data.S3.Bucket == "" {
		problems = append(problems, "data.s3.bucket is required with the s3 driver")
	}

	switch mode {
	case "pipeline":
		// Nothing beyond the data source.
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
		}
	case "fetch":
		if c.Fetch.SeriesURL == "" && c.Fetch.SummaryURL == "" && c.Fetch.TechURL == "" {
			problems = append(problems, "at least one fetch URL is required (fetch.series_url, fetch.summary_url, fetch.tech_url)")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

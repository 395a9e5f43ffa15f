package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	Archive  ArchiveConfig
	Pipeline PipelineConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings for the lookup API.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the archive staging bucket.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Mirror    bool   `mapstructure:"mirror"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ArchiveConfig holds settings for acquiring the label release archive.
type ArchiveConfig struct {
	URL          string        `mapstructure:"url"`
	WorkDir      string        `mapstructure:"work_dir"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	KeepWorkDir  bool          `mapstructure:"keep_work_dir"`
}

// PipelineConfig holds extraction and persistence tunables.
type PipelineConfig struct {
	BatchSize   int `mapstructure:"batch_size"`
	Concurrency int `mapstructure:"concurrency"`
}

// EmailConfig holds run-report delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// Load reads configuration from environment variables with the NDCLINK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NDCLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ndclink")
	v.SetDefault("db.password", "ndclink_secret")
	v.SetDefault("db.name", "ndclink_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "ndclink-archives")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.mirror", false)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Archive defaults
	v.SetDefault("archive.url", "https://dailymed-data.nlm.nih.gov/public-release-files/dm_spl_release_human_rx_part1.zip")
	v.SetDefault("archive.work_dir", "tmp/ndclink")
	v.SetDefault("archive.fetch_timeout", "45m")
	v.SetDefault("archive.keep_work_dir", false)

	// Pipeline defaults
	v.SetDefault("pipeline.batch_size", 1000)
	v.SetDefault("pipeline.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@ndclink.dev")
	v.SetDefault("email.from_name", "NDClink")
	v.SetDefault("email.to_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "NDCLINK_SERVER_PORT",
		"server.read_timeout":   "NDCLINK_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "NDCLINK_SERVER_WRITE_TIMEOUT",
		"server.environment":    "NDCLINK_SERVER_ENVIRONMENT",
		"db.host":               "NDCLINK_DB_HOST",
		"db.port":               "NDCLINK_DB_PORT",
		"db.user":               "NDCLINK_DB_USER",
		"db.password":           "NDCLINK_DB_PASSWORD",
		"db.name":               "NDCLINK_DB_NAME",
		"db.sslmode":            "NDCLINK_DB_SSLMODE",
		"db.max_open":           "NDCLINK_DB_MAX_OPEN",
		"db.max_idle":           "NDCLINK_DB_MAX_IDLE",
		"s3.region":             "NDCLINK_S3_REGION",
		"s3.bucket":             "NDCLINK_S3_BUCKET",
		"s3.endpoint":           "NDCLINK_S3_ENDPOINT",
		"s3.access_key":         "NDCLINK_S3_ACCESS_KEY",
		"s3.secret_key":         "NDCLINK_S3_SECRET_KEY",
		"s3.mirror":             "NDCLINK_S3_MIRROR",
		"log.level":             "NDCLINK_LOG_LEVEL",
		"log.format":            "NDCLINK_LOG_FORMAT",
		"archive.url":           "NDCLINK_ARCHIVE_URL",
		"archive.work_dir":      "NDCLINK_ARCHIVE_WORK_DIR",
		"archive.fetch_timeout": "NDCLINK_ARCHIVE_FETCH_TIMEOUT",
		"archive.keep_work_dir": "NDCLINK_ARCHIVE_KEEP_WORK_DIR",
		"pipeline.batch_size":   "NDCLINK_PIPELINE_BATCH_SIZE",
		"pipeline.concurrency":  "NDCLINK_PIPELINE_CONCURRENCY",
		"email.provider":        "NDCLINK_EMAIL_PROVIDER",
		"email.region":          "NDCLINK_EMAIL_REGION",
		"email.from_address":    "NDCLINK_EMAIL_FROM_ADDRESS",
		"email.from_name":       "NDCLINK_EMAIL_FROM_NAME",
		"email.to_address":      "NDCLINK_EMAIL_TO_ADDRESS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Pipeline.BatchSize < 1 {
		cfg.Pipeline.BatchSize = 1
	}
	if cfg.Pipeline.Concurrency < 1 {
		cfg.Pipeline.Concurrency = 1
	}

	return &cfg, nil
}

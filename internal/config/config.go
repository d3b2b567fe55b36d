package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Convert   ConvertConfig   `mapstructure:"convert"`
	Retention RetentionConfig `mapstructure:"retention"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres

	// SQLite
	Path string `mapstructure:"path"`

	// Postgres
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`

	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
		)
	}
	return c.Path
}

// StorageConfig describes where job file trees live. Uploads and outputs
// are always staged on local disk; an S3-compatible mirror for converted
// outputs is optional.
type StorageConfig struct {
	DataDir string   `mapstructure:"data_dir"`
	Mirror  S3Config `mapstructure:"mirror"`
}

type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

type ConvertConfig struct {
	// TaskTimeout bounds one converter invocation so a hung external tool
	// cannot keep a job pending forever.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`

	Resvg     ResvgConfig     `mapstructure:"resvg"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Gotenberg GotenbergConfig `mapstructure:"gotenberg"`
}

type ResvgConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary"`
}

type FFmpegConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary"`
}

type GotenbergConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type RetentionConfig struct {
	// Horizon is the job age past which it is eligible for deletion.
	Horizon time.Duration `mapstructure:"horizon"`
	// Interval is how often the sweeper runs.
	Interval time.Duration `mapstructure:"interval"`
	// SweepUnfinished controls whether non-completed jobs past the horizon
	// are swept too. The original behavior is age-only deletion; set false
	// to exempt jobs that are still pending.
	SweepUnfinished bool `mapstructure:"sweep_unfinished"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Environment string `mapstructure:"environment"`
	File        string `mapstructure:"file"`
	FileOnly    bool   `mapstructure:"file_only"`
}

// Load reads configuration from the given yaml file (or ./configs/config.yaml)
// with environment variable overrides.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env are enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/fileforge.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "fileforge")
	v.SetDefault("database.user", "fileforge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.mirror.enabled", false)
	v.SetDefault("storage.mirror.endpoint", "localhost:9000")
	v.SetDefault("storage.mirror.use_ssl", false)
	v.SetDefault("storage.mirror.bucket", "fileforge")
	v.SetDefault("storage.mirror.region", "us-east-1")

	v.SetDefault("convert.task_timeout", "10m")
	v.SetDefault("convert.resvg.enabled", true)
	v.SetDefault("convert.resvg.binary", "resvg")
	v.SetDefault("convert.ffmpeg.enabled", true)
	v.SetDefault("convert.ffmpeg.binary", "ffmpeg")
	v.SetDefault("convert.gotenberg.enabled", false)
	v.SetDefault("convert.gotenberg.url", "http://localhost:3000")

	v.SetDefault("retention.horizon", "24h")
	v.SetDefault("retention.interval", "24h")
	v.SetDefault("retention.sweep_unfinished", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "local")
	v.SetDefault("log.file", "")
	v.SetDefault("log.file_only", false)
}

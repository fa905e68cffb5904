// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	OwnerID int64  `yaml:"owner_id"` // the single authorized operator
	Workers int    `yaml:"workers"`  // concurrent update handlers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	QueueKey string        `yaml:"queue_key"`
	LeaseTTL time.Duration `yaml:"lease_ttl"`
}

type DatabaseConfig struct {
	// URL enables the delivery archive; leave empty to run without Postgres.
	URL string `yaml:"url"`
}

type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	DownloadDir  string        `yaml:"download_dir"`
	ThumbDir     string        `yaml:"thumb_dir"`
	OutputDir    string        `yaml:"output_dir"`
	FFmpegBin    string        `yaml:"ffmpeg_bin"`
}

type OpsConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Worker   WorkerConfig   `yaml:"worker"`
	Ops      OpsConfig      `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config, after overlaying a local .env file (if
// present) so ${VAR} references in secret fields resolve without exporting
// anything by hand.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Secrets may be given as ${ENV_VAR} placeholders.
	cfg.Bot.Token = os.ExpandEnv(cfg.Bot.Token)
	cfg.Redis.URL = os.ExpandEnv(cfg.Redis.URL)
	cfg.Redis.Password = os.ExpandEnv(cfg.Redis.Password)
	cfg.Database.URL = os.ExpandEnv(cfg.Database.URL)
	cfg.Ops.APIKey = os.ExpandEnv(cfg.Ops.APIKey)
	cfg.Ops.JWTSecret = os.ExpandEnv(cfg.Ops.JWTSecret)

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.QueueKey == "" {
		cfg.Redis.QueueKey = "media:jobs"
	}
	if cfg.Redis.LeaseTTL <= 0 {
		cfg.Redis.LeaseTTL = 10 * time.Minute
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 2 * time.Second
	}
	if cfg.Worker.MaxAttempts <= 0 {
		cfg.Worker.MaxAttempts = 3
	}
	if cfg.Worker.DownloadDir == "" {
		cfg.Worker.DownloadDir = "/tmp/media-publisher/downloads"
	}
	if cfg.Worker.ThumbDir == "" {
		cfg.Worker.ThumbDir = "/tmp/media-publisher/thumbs"
	}
	if cfg.Worker.OutputDir == "" {
		cfg.Worker.OutputDir = "/tmp/media-publisher/final"
	}
	if cfg.Worker.FFmpegBin == "" {
		cfg.Worker.FFmpegBin = "ffmpeg"
	}
	if cfg.Ops.Port <= 0 {
		cfg.Ops.Port = 8090
	}
	if cfg.Ops.SessionTTL <= 0 {
		cfg.Ops.SessionTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.OwnerID == 0 {
		return nil, errors.New("bot.owner_id is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// EnsureDirs creates the worker scratch directories.
func (c *WorkerConfig) EnsureDirs() error {
	for _, dir := range []string{c.DownloadDir, c.ThumbDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

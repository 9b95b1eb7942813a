package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env        string
	HealthPort int

	Bot      BotConfig
	Redis    RedisConfig
	Lectures LecturesConfig
	Log      LogConfig
	Download DownloadConfig
}

// BotConfig carries the Telegram credentials and the admin allow-list.
type BotConfig struct {
	Token    string
	AdminIDs []int64
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LecturesConfig locates the on-disk lecture file store.
type LecturesConfig struct {
	StorageDir string
}

type LogConfig struct {
	Level  string
	Format string
}

// DownloadConfig tunes the lecture file download queue.
type DownloadConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.HealthPort = v.GetInt("HEALTH_PORT")

	cfg.Bot = BotConfig{
		Token:    v.GetString("BOT_TOKEN"),
		AdminIDs: parseIDList(v.GetString("ADMIN_IDS")),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Lectures = LecturesConfig{
		StorageDir: v.GetString("LECTURES_DIR"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Download = DownloadConfig{
		Workers:    v.GetInt("DOWNLOAD_WORKERS"),
		Retries:    v.GetInt("DOWNLOAD_RETRIES"),
		RetryDelay: parseDuration(v.GetString("DOWNLOAD_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HEALTH_PORT", 8090)

	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("ADMIN_IDS", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LECTURES_DIR", "./lectures")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOWNLOAD_WORKERS", 2)
	v.SetDefault("DOWNLOAD_RETRIES", 3)
	v.SetDefault("DOWNLOAD_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]int64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			continue
		}
		result = append(result, id)
	}

	return result
}

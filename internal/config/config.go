package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func Load() Config {
	cfg := Config{}

	cfg.Port = cast.ToString(getOrReturnDefault("PORT", "8080"))

	cfg.DBHost = cast.ToString(getOrReturnDefault("DB_HOST", "localhost"))
	cfg.DBPort = cast.ToString(getOrReturnDefault("DB_PORT", "5432"))
	cfg.DBUser = cast.ToString(getOrReturnDefault("DB_USER", "postgres"))
	cfg.DBPassword = cast.ToString(getOrReturnDefault("DB_PASSWORD", "postgres"))
	cfg.DBName = cast.ToString(getOrReturnDefault("DB_NAME", "carpool"))

	cfg.RedisURL = cast.ToString(getOrReturnDefault("REDIS_URL", "redis://localhost:6379"))

	cfg.AccessTokenTTL = time.Duration(cast.ToInt(getOrReturnDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(cast.ToInt(getOrReturnDefault("REFRESH_TOKEN_EXPIRE_MINUTES", 40320))) * time.Minute

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

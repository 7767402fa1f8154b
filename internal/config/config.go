package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	GRPC      GRPCConfig
	Booking   BookingConfig
	LogLevel  string
}

type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr — адрес HTTP-сервера.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RedisConfig — кэш списка бронирований. Пустой Addr отключает кэш.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ListCacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type GRPCConfig struct {
	Addr           string
	HealthInterval time.Duration
}

type BookingConfig struct {
	StrictValidation bool
	PageSize         int
}

// LoadConfig читает конфигурацию из окружения; envFiles (если есть)
// подгружаются через godotenv и не перекрывают уже выставленные переменные.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT_SEC", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT_SEC", 15)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_LIST_CACHE_TTL_SEC", 60)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("GRPC_HEALTH_INTERVAL_SEC", 10)
	v.SetDefault("BOOKING_STRICT_VALIDATION", false)
	v.SetDefault("BOOKING_PAGE_SIZE", 10)
	v.SetDefault("LOG_LEVEL", "info")
	setDBDefaults(v)

	db, err := loadDBConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT_SEC")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT_SEC")) * time.Second,
		},
		DB: db,
		Redis: RedisConfig{
			Addr:         v.GetString("REDIS_ADDR"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			ListCacheTTL: time.Duration(v.GetInt("REDIS_LIST_CACHE_TTL_SEC")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
		},
		GRPC: GRPCConfig{
			Addr:           v.GetString("GRPC_ADDR"),
			HealthInterval: time.Duration(v.GetInt("GRPC_HEALTH_INTERVAL_SEC")) * time.Second,
		},
		Booking: BookingConfig{
			StrictValidation: v.GetBool("BOOKING_STRICT_VALIDATION"),
			PageSize:         v.GetInt("BOOKING_PAGE_SIZE"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Booking.PageSize <= 0 {
		return nil, fmt.Errorf("invalid booking page size %d", cfg.Booking.PageSize)
	}

	return cfg, nil
}

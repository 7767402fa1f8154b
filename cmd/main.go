package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Leganyst/samara-beach/internal/cache"
	"github.com/Leganyst/samara-beach/internal/config"
	"github.com/Leganyst/samara-beach/internal/db"
	"github.com/Leganyst/samara-beach/internal/grpcserver"
	"github.com/Leganyst/samara-beach/internal/health"
	"github.com/Leganyst/samara-beach/internal/metrics"
	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/repository"
	"github.com/Leganyst/samara-beach/internal/samara"
	"github.com/Leganyst/samara-beach/internal/service"
	"github.com/Leganyst/samara-beach/internal/web"
)

const (
	Version = "0.1.0"
	appName = "samara"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Samara Beach booking admin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP admin and the gRPC health listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(envFile, logLevel)
			if err != nil {
				return err
			}
			return serve(cfg, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(envFile, logLevel)
			if err != nil {
				return err
			}
			if cfg.DB.Driver == config.DriverMemory {
				return errors.New("migrate: memory driver has no schema")
			}
			gormDB, err := openDB(&cfg.DB, model.AutoMigrate)
			if err != nil {
				return err
			}
			defer closeDB(gormDB, logger)
			logger.Info("schema migrated", "driver", cfg.DB.Driver)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setup(envFile, logLevel string) (*config.Config, *slog.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.LoadConfig(files...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(logLevel)}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openDB подключается к БД и применяет миграции. Если миграция не прошла,
// пул закрывается.
func openDB(cfg *config.DBConfig, migrate func(*gorm.DB) error) (*gorm.DB, error) {
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := migrate(gormDB); err != nil {
		if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gormDB, nil
}

func closeDB(gormDB *gorm.DB, logger *slog.Logger) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close db", "error", err)
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker(2 * time.Second)

	// 1. Хранилище.
	var repo repository.BookingRepository
	if cfg.DB.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		repo = repository.NewMemoryBookingRepository()
	} else {
		gormDB, err := openDB(&cfg.DB, model.AutoMigrate)
		if err != nil {
			return err
		}
		defer closeDB(gormDB, logger)
		repo = repository.NewGormBookingRepository(gormDB)
		checker.Add("db", health.GormProbe(gormDB))
	}

	// 2. Кэш списка (опционально).
	var listCache cache.ListCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, list cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			listCache = cache.NewRedisListCache(rdb, "", cfg.Redis.ListCacheTTL)
			checker.Add("redis", health.RedisProbe(rdb))
			logger.Info("list cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	// 3. Сервис и метрики.
	validator := samara.NewValidator(samara.WithStrict(cfg.Booking.StrictValidation))
	svc := service.NewBookingService(repo, listCache, validator, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	// 4. HTTP.
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := web.NewRouter(svc, web.Options{
		Logger:    logger,
		PageSize:  cfg.Booking.PageSize,
		RateLimit: cfg.RateLimit,
		Checker:   checker,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 5. gRPC health.
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
	}
	grpcSrv := grpcserver.New(checker, cfg.GRPC.HealthInterval, logger)

	errCh := make(chan error, 2)
	go func() {
		if err := grpcSrv.Serve(ctx, lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", httpSrv.Addr, "strict_validation", validator.Strict())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()

	// 6. Грейсфул-шатдаун по сигналу или ошибке одного из серверов.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcSrv.Stop()

	return runErr
}

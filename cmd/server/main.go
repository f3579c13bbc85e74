// Package main - точка входа для Academic Results Hub.
//
// Сервис управляет жизненным циклом студенческих результатов: ввод оценок,
// утверждение ведомостей, реестр перездач (carryover) и журнал аудита всех
// изменений. Каждое изменение результата фиксируется с контекстом запроса
// (IP, устройство, локация), чтобы любую правку можно было проследить.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Event Handlers)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: HTTP REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/resulthub/academic-results-hub/config"

	// Application layer
	"github.com/resulthub/academic-results-hub/internal/application/auditctx"
	"github.com/resulthub/academic-results-hub/internal/application/command"
	"github.com/resulthub/academic-results-hub/internal/application/eventhandler"
	"github.com/resulthub/academic-results-hub/internal/application/query"

	// Domain layer
	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/resulthub/academic-results-hub/internal/infrastructure/external/geoip"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/external/uaparser"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/messaging"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/persistence/postgres"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/resulthub/academic-results-hub/internal/interface/http"
	"github.com/resulthub/academic-results-hub/internal/interface/http/handlers"

	// Packages
	"github.com/resulthub/academic-results-hub/pkg/logger"
	"github.com/resulthub/academic-results-hub/pkg/retry"
)

// eventBus объединяет шину событий с её закрытием при shutdown.
type eventBus interface {
	shared.EventBus
	Close() error
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Academic Results Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")

	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", "error", err)
		} else {
			appliedCount := 0
			for _, m := range status {
				if m.IsApplied {
					appliedCount++
				}
			}
			log.Info("migrations completed", "applied", appliedCount, "total", len(status))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var standingStore *redis.StandingStore

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureCacheStanding, nil) {
				standingStore = redis.NewStandingStore(redisCache)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	resultRepo := postgres.NewResultRepository(dbConn)
	carryoverRepo := postgres.NewCarryoverRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	auditRepo := postgres.NewAlterationRepository(dbConn)
	gradingRepo := postgres.NewGradingRepository(dbConn)
	uow := postgres.NewUnitOfWork(dbConn)

	// Шкала оценок читается на каждый ввод результата - кешируем в Redis
	var gradingTables grading.TableProvider = gradingRepo
	if redisCache != nil && cfg.Features.IsEnabled(config.FeatureCacheGradingScheme, nil) {
		gradingTables = redis.NewGradingCache(gradingRepo, redisCache, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.AsyncMode = cfg.EventBus.AsyncMode
	busConfig.WorkerPoolSize = cfg.EventBus.WorkerPoolSize
	busConfig.EnableMetrics = cfg.EventBus.EnableMetrics
	busConfig.Logger = log

	var bus eventBus
	if cfg.EventBus.UseRedis && redisCache != nil {
		bus, err = messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redisCache.Client(),
			ChannelName:    cfg.EventBus.ChannelName,
			LocalBusConfig: busConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
	} else {
		bus = messaging.NewInMemoryEventBus(busConfig)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if standingStore != nil {
		log.Info("registering standing projection handler...")
		projection := eventhandler.NewOnResultChangedHandler(
			resultRepo,
			carryoverRepo,
			courseRepo,
			standingStore,
			log,
			eventhandler.DefaultStandingProjectionConfig(),
		)
		if err := projection.Register(bus); err != nil {
			return fmt.Errorf("failed to register standing projection: %w", err)
		}
	} else {
		log.Info("standing projection disabled - Redis unavailable")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ AUDIT CONTEXT CAPTURE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing audit context capture...")

	var geoLocator auditctx.GeoLocator
	if !cfg.GeoIP.Disabled && cfg.Features.IsEnabled(config.FeatureAuditGeoLookup, nil) {
		geoCfg := geoip.DefaultClientConfig()
		geoCfg.BaseURL = cfg.GeoIP.BaseURL
		geoCfg.Timeout = cfg.GeoIP.RequestTimeout
		geoCfg.RequestsPerMinute = cfg.GeoIP.RequestsPerMinute
		geoCfg.Logger = log
		geoLocator = geoip.NewClient(geoCfg)
	}

	// nil-парсер оставляет поля устройства Unknown
	var uaParser auditctx.UserAgentParser
	if cfg.Features.IsEnabled(config.FeatureAuditUAParsing, nil) {
		uaParser = uaparser.NewParser()
	}

	capturer := auditctx.NewCapturer(
		uaParser,
		geoLocator,
		log,
		auditctx.DefaultCaptureConfig(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	upsertCmd := command.NewUpsertResultHandler(uow, gradingTables, bus)
	batchCmd := command.NewSubmitResultBatchHandler(uow, upsertCmd, bus)
	deleteCmd := command.NewDeleteResultHandler(uow, bus)
	lockCmd := command.NewLockCourseResultsHandler(uow, bus)
	unlockCmd := command.NewUnlockCourseResultsHandler(uow, bus)
	finalApproveCmd := command.NewFinalApproveCourseHandler(uow, bus)
	scanCmd := command.NewScanSessionHandler(uow, bus)

	carryoversQuery := query.NewGetOutstandingCarryoversHandler(carryoverRepo)
	coverageQuery := query.NewCheckCarryoverCoverageHandler(carryoverRepo, resultRepo)
	transcriptQuery := query.NewGetTranscriptSummaryHandler(resultRepo, courseRepo)
	alterationsQuery := query.NewGetAlterationHistoryHandler(auditRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.RequestTimeout = cfg.HTTP.RequestTimeout
	httpConfig.MaxHeaderBytes = cfg.HTTP.MaxHeaderBytes
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.APIKeyHeader = cfg.HTTP.APIKeyHeader
	httpConfig.APIKeys = cfg.HTTP.APIKeys

	httpDeps := httpserver.Dependencies{
		UpsertResultHandler:          upsertCmd,
		SubmitResultBatchHandler:     batchCmd,
		DeleteResultHandler:          deleteCmd,
		LockCourseResultsHandler:     lockCmd,
		UnlockCourseResultsHandler:   unlockCmd,
		FinalApproveCourseHandler:    finalApproveCmd,
		ScanSessionHandler:           scanCmd,
		OutstandingCarryoversHandler: carryoversQuery,
		CarryoverCoverageHandler:     coverageQuery,
		TranscriptSummaryHandler:     transcriptQuery,
		AlterationHistoryHandler:     alterationsQuery,
		Capturer:                     capturer,
		Logger:                       logger.Default(),
		HealthChecker:                healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Academic Results Hub is running",
		"http_address", httpServer.Address(),
	)

	// Ожидаем сигнал завершения или ошибку
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	// 1. Останавливаем HTTP сервер (перестаём принимать новые запросы)
	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		log.Warn("shutdown completed with errors")
		return nil
	}

	// 2. Event bus закроется через defer (дожидается in-flight обработчиков)

	// 3. База данных закроется через defer

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

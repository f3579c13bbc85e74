// Package main - точка входа для фоновых процессов (Worker) Academic Results Hub.
//
// Worker отвечает за периодические задачи:
// - Сканирование сессии на незакрытые carryover (реестр перездач)
//
// Worker работает отдельно от API-сервера: плановое сканирование не должно
// конкурировать за ресурсы с интерактивным вводом результатов.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/resulthub/academic-results-hub/config"

	// Application layer
	"github.com/resulthub/academic-results-hub/internal/application/command"

	// Infrastructure layer
	"github.com/resulthub/academic-results-hub/internal/infrastructure/messaging"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/persistence/postgres"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/scheduler"
	"github.com/resulthub/academic-results-hub/internal/infrastructure/scheduler/jobs"

	// Packages
	"github.com/resulthub/academic-results-hub/pkg/retry"
	"github.com/resulthub/academic-results-hub/pkg/timeutil"
)

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
	log.Info("starting Academic Results Hub Worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing to run (set SCHEDULER_ENABLED=true)")
	}

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
	// 4. ЗАПУСК МИГРАЦИЙ (Worker также должен иметь актуальную схему)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	// У worker нет своих подписчиков - события сканирования публикуются
	// локально и видны только в логах шины.
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	busConfig.AsyncMode = false
	bus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	uow := postgres.NewUnitOfWork(dbConn)
	scanHandler := command.NewScanSessionHandler(uow, bus)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. РЕГИСТРАЦИЯ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: timeutil.CampusTZ,
	})

	scanSchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.CarryoverScanCron)
	if err != nil {
		return fmt.Errorf("invalid carryover scan cron %q: %w", cfg.Scheduler.CarryoverScanCron, err)
	}

	if cfg.Features.IsEnabled(config.FeatureCarryoverAutoScan, nil) {
		scanJob := jobs.NewScanCarryoversJob(scanHandler, jobs.ScanCarryoversConfig{
			Session: cfg.Scheduler.CarryoverScanSession,
			Timeout: cfg.Scheduler.JobTimeout,
			Logger:  log,
		})

		if err := sched.Register(scanJob, scanSchedule); err != nil {
			return fmt.Errorf("failed to register carryover scan job: %w", err)
		}
	} else {
		log.Warn("carryover auto-scan feature disabled - no jobs registered")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ЗАПУСК SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Academic Results Hub Worker is running",
		"carryover_scan_cron", cfg.Scheduler.CarryoverScanCron,
		"timezone", timeutil.CampusTZ.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	// Дожидаемся завершения текущих задач
	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
	}

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
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
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

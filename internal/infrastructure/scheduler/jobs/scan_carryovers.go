// Package jobs contains the scheduled maintenance jobs of the results hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/resulthub/academic-results-hub/internal/application/command"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/pkg/timeutil"
)

// ScanCarryoversJob периодически прогоняет carryover-сканирование сессии.
// Реестр перездач пополняется и при вводе результатов, но плановый прогон
// закрывает дыры: результаты, загруженные напрямую в базу, и правки,
// сделанные до того, как сканирование было включено.
type ScanCarryoversJob struct {
	handler *command.ScanSessionHandler
	logger  *slog.Logger

	// Session to sweep; empty means the current academic session.
	session string

	// Timeout bounds a single sweep.
	timeout time.Duration
}

// ScanCarryoversConfig configures the job.
type ScanCarryoversConfig struct {
	// Session overrides the session to sweep (default: current session).
	Session string

	// Timeout bounds a single sweep (default: 5 minutes).
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewScanCarryoversJob creates the job.
func NewScanCarryoversJob(handler *command.ScanSessionHandler, cfg ScanCarryoversConfig) *ScanCarryoversJob {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ScanCarryoversJob{
		handler: handler,
		logger:  cfg.Logger.With("job", "scan_carryovers"),
		session: cfg.Session,
		timeout: cfg.Timeout,
	}
}

// Name returns the unique name of the job.
func (j *ScanCarryoversJob) Name() string {
	return "scan_carryovers"
}

// Description returns a human-readable description of the job.
func (j *ScanCarryoversJob) Description() string {
	return "Sweeps the session for failing results without an open carryover"
}

// Run executes one sweep. The sweep is idempotent, so overlapping or
// repeated runs are harmless.
func (j *ScanCarryoversJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	session := j.session
	if session == "" {
		session = timeutil.CurrentSession()
	}

	// Сканирование требует oversight-полномочий - запускаем от системного актора
	actor := shared.Actor{
		ID:   "system-scheduler",
		Name: "Results Scheduler",
		Role: shared.RoleAdmin,
	}

	result, err := j.handler.Handle(ctx, command.ScanSessionCommand{
		Session:       session,
		Actor:         actor,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("carryover sweep of %s failed: %w", session, err)
	}

	j.logger.Info("carryover sweep completed",
		"session", session,
		"results_scanned", result.ResultsScanned,
		"carryovers_opened", result.CarryoversOpened,
	)

	return nil
}

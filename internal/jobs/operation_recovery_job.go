package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelshare/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type operationRecoverer interface {
	Handle(ctx context.Context, command commands.RecoverStalledOperationsCommand) (int, error)
}

// OperationRecoveryJob finishes gateway operations whose request died after
// the reservation was committed.
type OperationRecoveryJob struct {
	handler   operationRecoverer
	schedule  string
	olderThan time.Duration
	batch     int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOperationRecoveryJob builds the job. olderThan is checked when the
// command is built, so a threshold below commands.OperationTimeout only
// logs an error on every tick.
func NewOperationRecoveryJob(
	handler operationRecoverer,
	schedule string,
	olderThan time.Duration,
	batch int,
	logger *slog.Logger,
) *OperationRecoveryJob {
	return &OperationRecoveryJob{
		handler:   handler,
		schedule:  schedule,
		olderThan: olderThan,
		batch:     batch,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "operation_recovery_job"),
	}
}

// Start registers the sweep on the schedule. It fails only on a bad
// schedule expression.
func (j *OperationRecoveryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Operation recovery job started", "schedule", j.schedule, "older_than", j.olderThan)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *OperationRecoveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Operation recovery job stopped")
}

func (j *OperationRecoveryJob) run(ctx context.Context) {
	cmd, err := commands.NewRecoverStalledOperationsCommand(j.olderThan, j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Operation recovery job misconfigured", "error", err)
		return
	}

	recovered, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		if !errors.Is(err, commands.ErrNoStalledOperations) {
			j.logger.ErrorContext(ctx, "Operation recovery job failed", "error", err)
		}
		return
	}
	j.logger.WarnContext(ctx, "Stalled operations recovered", "count", recovered)
}

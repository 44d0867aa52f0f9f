package jobs

import (
	"context"
	"log/slog"

	"parcelshare/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type outboxDispatcher interface {
	Handle(ctx context.Context, command commands.DispatchOutboxCommand) (int, error)
}

// OutboxDispatchJob publishes pending assignment events on a schedule.
// A run that is still going when the next tick fires is skipped.
type OutboxDispatchJob struct {
	handler  outboxDispatcher
	schedule string
	batch    int
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOutboxDispatchJob creates the job. schedule is a six-field cron
// expression, batch the number of messages claimed per run.
func NewOutboxDispatchJob(handler outboxDispatcher, schedule string, batch int, logger *slog.Logger) *OutboxDispatchJob {
	return &OutboxDispatchJob{
		handler:  handler,
		schedule: schedule,
		batch:    batch,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "outbox_dispatch_job"),
	}
}

// Start schedules the dispatch and returns an error for a bad schedule
// expression.
func (j *OutboxDispatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Outbox dispatch job started", "schedule", j.schedule, "batch", j.batch)
	return nil
}

// Stop waits for a running dispatch to finish.
func (j *OutboxDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Outbox dispatch job stopped")
}

func (j *OutboxDispatchJob) run(ctx context.Context) {
	cmd, err := commands.NewDispatchOutboxCommand(j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox dispatch job misconfigured", "error", err)
		return
	}

	published, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox dispatch job failed", "error", err)
		return
	}
	if published > 0 {
		j.logger.DebugContext(ctx, "Outbox dispatched", "published", published)
	}
}

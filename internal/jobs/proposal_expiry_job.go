package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelshare/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type proposalExpirer interface {
	Handle(ctx context.Context, command commands.ExpireStaleProposalsCommand) (int, error)
}

// ProposalExpiryJob cancels negotiations that sat idle longer than ttl.
type ProposalExpiryJob struct {
	handler  proposalExpirer
	schedule string
	ttl      time.Duration
	batch    int
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewProposalExpiryJob builds the job; nothing runs until Start.
func NewProposalExpiryJob(handler proposalExpirer, schedule string, ttl time.Duration, batch int, logger *slog.Logger) *ProposalExpiryJob {
	return &ProposalExpiryJob{
		handler:  handler,
		schedule: schedule,
		ttl:      ttl,
		batch:    batch,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "proposal_expiry_job"),
	}
}

// Start schedules the sweep. Runs never overlap: a sweep still running
// when the next tick fires makes that tick a no-op.
func (j *ProposalExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Proposal expiry job started", "schedule", j.schedule, "ttl", j.ttl)
	return nil
}

// Stop blocks until a running sweep returns.
func (j *ProposalExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Proposal expiry job stopped")
}

func (j *ProposalExpiryJob) run(ctx context.Context) {
	cmd, err := commands.NewExpireStaleProposalsCommand(j.ttl, j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Proposal expiry job misconfigured", "error", err)
		return
	}

	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		// an empty sweep is the common case
		if !errors.Is(err, commands.ErrNoStaleProposals) {
			j.logger.ErrorContext(ctx, "Proposal expiry job failed", "error", err)
		}
		return
	}
	j.logger.InfoContext(ctx, "Stale proposals expired", "count", expired)
}

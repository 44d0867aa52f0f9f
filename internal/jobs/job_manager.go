package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Schedules configures the background jobs.
type Schedules struct {
	OutboxDispatch string
	OutboxBatch    int
	ProposalExpiry string
	ProposalTTL    time.Duration
	ExpiryBatch    int

	OperationRecovery string
	StalledAfter      time.Duration
	RecoveryBatch     int
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	outboxDispatchJob *OutboxDispatchJob
	proposalExpiryJob *ProposalExpiryJob
	recoveryJob       *OperationRecoveryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	dispatchHandler outboxDispatcher,
	expiryHandler proposalExpirer,
	recoveryHandler operationRecoverer,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		outboxDispatchJob: NewOutboxDispatchJob(dispatchHandler, schedules.OutboxDispatch, schedules.OutboxBatch, logger),
		proposalExpiryJob: NewProposalExpiryJob(
			expiryHandler, schedules.ProposalExpiry, schedules.ProposalTTL, schedules.ExpiryBatch, logger,
		),
		recoveryJob: NewOperationRecoveryJob(
			recoveryHandler, schedules.OperationRecovery, schedules.StalledAfter, schedules.RecoveryBatch, logger,
		),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxDispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox dispatch job: %w", err)
	}

	if err := jm.proposalExpiryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.outboxDispatchJob.Stop()
		return fmt.Errorf("failed to start proposal expiry job: %w", err)
	}

	if err := jm.recoveryJob.Start(); err != nil {
		jm.proposalExpiryJob.Stop()
		jm.outboxDispatchJob.Stop()
		return fmt.Errorf("failed to start operation recovery job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.recoveryJob.Stop()
	jm.proposalExpiryJob.Stop()
	jm.outboxDispatchJob.Stop()
}

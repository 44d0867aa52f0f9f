// Package jobs provides scheduled background tasks for the assignment engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OutboxDispatchJob - publishes assignment events written to the outbox
// 2. ProposalExpiryJob - cancels PROPOSED and NEGOTIATING assignments idle longer than the proposal TTL
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(dispatchHandler, expiryHandler, schedules, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions (seconds first), for example
// "*/5 * * * * *" for the dispatcher and "0 * * * * *" for the expiry sweep.
// Overlapping runs of the same job are skipped.
//
// # Error Handling
//
// - Expiry job ignores an empty sweep (ErrNoStaleProposals)
// - Dispatch job logs handler errors; per-message publish failures are rescheduled by the handler
// - Failed job starts will stop any already running jobs
package jobs

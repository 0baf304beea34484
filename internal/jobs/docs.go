// Package jobs provides scheduled background tasks for the trip execution
// pipeline.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive asynchronous trip execution.
//
// # Available Jobs
//
// 1. TripExecutionJob - Polls the execution queue every second, claims the
// oldest queued record and runs the trip execution attempt end to end
// 2. StaleExecutionJob - Runs every thirty seconds to fail execution records
// abandoned by crashed workers
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(executionRepo, executeTripHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The worker uses the cron expression "* * * * * *" (every second) so queued
// trips start executing promptly; overlapping ticks are skipped, so one
// instance of the job executes one trip at a time. The reaper runs on
// "*/30 * * * * *".
//
// # Error Handling
//
// - An empty queue is the normal case and is not logged
// - When the execution handler returns an error the worker fails the claimed
// record itself, so no record is left processing after a handler breakdown
// - Failed job starts will stop any already running jobs
package jobs

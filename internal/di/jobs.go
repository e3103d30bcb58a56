package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/config"
	"github.com/aristath/pragmas/internal/reliability"
	"github.com/aristath/pragmas/internal/scheduler"
)

// RegisterJobs creates the scheduler and registers every background job on it.
// The scheduler is returned stopped.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	instances := &JobInstances{
		Scheduler:     scheduler.New(log),
		RiskMonitor:   scheduler.NewRiskMonitorJob(container.RiskMonitor, log),
		WALCheckpoint: reliability.NewWALCheckpointJob(container.Databases(), cfg.DataDir, log),
	}

	if err := instances.Scheduler.AddJob(cfg.Schedules.RiskMonitor, instances.RiskMonitor); err != nil {
		return nil, fmt.Errorf("failed to register risk monitor job: %w", err)
	}
	if err := instances.Scheduler.AddJob(cfg.Schedules.WALCheckpoint, instances.WALCheckpoint); err != nil {
		return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
		if err := instances.Scheduler.AddJob(cfg.Schedules.Backup, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	log.Info().Int("jobs", instances.Scheduler.Entries()).Msg("Jobs registered")
	return instances, nil
}

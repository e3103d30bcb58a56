package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/pragmas/internal/database"
)

const (
	// jobTimeout bounds a single maintenance or backup run
	jobTimeout = 10 * time.Minute

	lowDiskBytes      = 5 << 30
	criticalDiskBytes = 500 << 20
)

// WALCheckpointJob checkpoints and quick-checks every database, then checks free disk space
type WALCheckpointJob struct {
	databases []*database.DB
	dataDir   string
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases []*database.DB, dataDir string, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		dataDir:   dataDir,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the job. Checkpoint failures are logged and do not fail the
// run; a failed integrity check or critically low disk space does.
func (j *WALCheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database quick check failed")
			return fmt.Errorf("quick check failed for %s: %w", db.Name(), err)
		}
	}

	return j.checkDiskSpace()
}

func (j *WALCheckpointJob) checkDiskSpace() error {
	usage, err := disk.Usage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read disk usage")
		return nil
	}

	availableGB := float64(usage.Free) / 1e9
	switch {
	case usage.Free < criticalDiskBytes:
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %.2f GB free in %s", availableGB, j.dataDir)
	case usage.Free < lowDiskBytes:
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	default:
		j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")
	}
	return nil
}

// BackupJob uploads a fresh backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates a backup, then rotates. Rotation failures are logged only.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

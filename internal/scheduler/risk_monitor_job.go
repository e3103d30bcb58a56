package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/modules/alerts"
)

const riskMonitorTimeout = 2 * time.Minute

// Scanner is the part of the risk monitor the job drives
type Scanner interface {
	Scan(ctx context.Context) (alerts.ScanResult, error)
}

// RiskMonitorJob scans open positions for return anomalies
type RiskMonitorJob struct {
	monitor Scanner
	log     zerolog.Logger
}

// NewRiskMonitorJob creates a new risk monitor job
func NewRiskMonitorJob(monitor Scanner, log zerolog.Logger) *RiskMonitorJob {
	return &RiskMonitorJob{
		monitor: monitor,
		log:     log.With().Str("job", "risk_monitor").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *RiskMonitorJob) Name() string {
	return "risk_monitor"
}

// Run executes one scan
func (j *RiskMonitorJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), riskMonitorTimeout)
	defer cancel()

	result, err := j.monitor.Scan(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("checked", result.Checked).
		Int("skipped", result.Skipped).
		Int("created", result.Created).
		Msg("Risk scan completed")
	return nil
}

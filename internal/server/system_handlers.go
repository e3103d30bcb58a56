package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/pragmas/internal/database"
)

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string           `json:"status"` // "healthy" or "degraded"
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Databases     []DatabaseStatus `json:"databases"`
}

// DatabaseStatus is the health of one database
type DatabaseStatus struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemHandlers serves process and database status
type SystemHandlers struct {
	databases []*database.DB
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(databases []*database.DB, startedAt time.Time, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		startedAt: startedAt,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStatus returns uptime, host load and database health.
// An unhealthy database degrades the status but the endpoint still answers 200.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     h.checkDatabases(r.Context()),
	}
	for _, db := range response.Databases {
		if !db.Healthy {
			response.Status = "degraded"
		}
	}

	writeJSON(h.log, w, http.StatusOK, response)
}

func (h *SystemHandlers) checkDatabases(ctx context.Context) []DatabaseStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	statuses := make([]DatabaseStatus, 0, len(h.databases))
	for _, db := range h.databases {
		status := DatabaseStatus{
			Name:    db.Name(),
			Profile: string(db.Profile()),
			Healthy: true,
		}
		if err := db.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			status.Healthy = false
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// getSystemStats returns CPU and RAM usage percentages. CPU is sampled
// over 100ms to keep the call fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuAvg := 0.0
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}

	return cpuAvg, memStat.UsedPercent
}

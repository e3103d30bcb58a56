package alerts

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
)

// ListLimit is the number of alerts returned to a caller
const ListLimit = 50

// AlertService implements the caller-facing alert operations
type AlertService struct {
	alerts *AlertRepository
	log    zerolog.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(alerts *AlertRepository, log zerolog.Logger) *AlertService {
	return &AlertService{
		alerts: alerts,
		log:    log.With().Str("service", "alerts").Logger(),
	}
}

// List returns the caller's most recent alerts
func (s *AlertService) List(ctx context.Context, caller *domain.Caller) ([]Alert, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}
	alerts, err := s.alerts.ListByUser(ctx, caller.ID, ListLimit)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to list alerts", err)
	}
	return alerts, nil
}

// MarkRead marks one of the caller's alerts as read
func (s *AlertService) MarkRead(ctx context.Context, caller *domain.Caller, alertID string) error {
	if caller == nil {
		return domain.NewUnauthorizedError("Unauthorized")
	}
	var v domain.Violations
	v.Check(alertID != "", "alert_id", "is required")
	if err := v.Err(); err != nil {
		return err
	}

	err := s.alerts.MarkRead(ctx, alertID, caller.ID, time.Now().UTC())
	if err != nil && domain.KindOf(err) != domain.KindNotFound {
		return domain.NewPersistenceError("failed to mark alert read", err)
	}
	return err
}

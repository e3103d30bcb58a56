package risk

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

// Actions accepted by Run, mapped to the tool each one executes
var actions = map[string]string{
	"stressTest":    analytics.StressTestName,
	"zScoreAnomaly": analytics.ZScoreAnomalyName,
}

// RunRequest is the body of a risk tool request
type RunRequest struct {
	Action string          `json:"action"`
	Input  json.RawMessage `json:"input"`
}

// RiskService exposes the risk tools to callers through the executor
type RiskService struct {
	executor *tools.Executor
	log      zerolog.Logger
}

// NewRiskService creates a new risk service
func NewRiskService(executor *tools.Executor, log zerolog.Logger) *RiskService {
	return &RiskService{
		executor: executor,
		log:      log.With().Str("service", "risk").Logger(),
	}
}

// Run executes the tool selected by req.Action as caller
func (s *RiskService) Run(ctx context.Context, caller *domain.Caller, req RunRequest) (any, error) {
	name, ok := actions[req.Action]
	if !ok {
		var v domain.Violations
		v.Add("action", "must be stressTest or zScoreAnomaly")
		return nil, v.Err()
	}
	return s.executor.ExecuteByName(ctx, name, req.Input, caller)
}

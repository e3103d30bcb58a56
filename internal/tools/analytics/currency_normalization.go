package analytics

import (
	"fmt"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/utils"
)

// CurrencyAmount is an amount with its rate to the base currency
type CurrencyAmount struct {
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	FXRateToBase float64 `json:"fxRateToBase"`
}

// CurrencyNormalizationInput is the currency normalization tool input
type CurrencyNormalizationInput struct {
	BaseCurrency string           `json:"baseCurrency"`
	Values       []CurrencyAmount `json:"values"`
}

// NormalizedAmount is one converted amount
type NormalizedAmount struct {
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	BaseAmount   float64 `json:"baseAmount"`
	FXRateToBase float64 `json:"fxRateToBase"`
}

// CurrencyNormalizationResult is the currency normalization tool output
type CurrencyNormalizationResult struct {
	BaseCurrency string             `json:"baseCurrency"`
	TotalBase    float64            `json:"totalBase"`
	Normalized   []NormalizedAmount `json:"normalized"`
}

// CurrencyNormalization converts amounts into the base currency using supplied rates
func CurrencyNormalization() tools.Tool {
	return tools.Define(CurrencyNormalizationName,
		"Normalize amounts into a base currency using provided FX rates.",
		tools.LevelUser,
		validateCurrencyNormalization,
		ComputeCurrencyNormalization,
	)
}

func validateCurrencyNormalization(in *CurrencyNormalizationInput) error {
	var v domain.Violations
	v.Check(validCurrencyCode(in.BaseCurrency), "baseCurrency", "must be 3 to 8 characters")
	for i, value := range in.Values {
		field := fmt.Sprintf("values[%d]", i)
		v.Check(validCurrencyCode(value.Currency), field+".currency", "must be 3 to 8 characters")
		v.Finite(value.Amount, field+".amount")
		v.Finite(value.FXRateToBase, field+".fxRateToBase")
		v.Check(value.FXRateToBase > 0, field+".fxRateToBase", "must be positive")
		v.Check(utils.IsFinite(value.Amount*value.FXRateToBase), field+".amount", "amount x fxRateToBase must be a finite number")
	}
	return v.Err()
}

func validCurrencyCode(code string) bool {
	return len(code) >= 3 && len(code) <= 8
}

// ComputeCurrencyNormalization is the pure conversion
func ComputeCurrencyNormalization(in CurrencyNormalizationInput) (CurrencyNormalizationResult, error) {
	result := CurrencyNormalizationResult{
		BaseCurrency: in.BaseCurrency,
		Normalized:   make([]NormalizedAmount, 0, len(in.Values)),
	}
	for _, value := range in.Values {
		base := value.Amount * value.FXRateToBase
		result.Normalized = append(result.Normalized, NormalizedAmount{
			Currency:     value.Currency,
			Amount:       value.Amount,
			BaseAmount:   base,
			FXRateToBase: value.FXRateToBase,
		})
		result.TotalBase += base
	}
	if err := finiteResult("values", result.TotalBase); err != nil {
		return CurrencyNormalizationResult{}, err
	}
	return result, nil
}

package position

import (
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
)

// Simulate projects the position after the intent. It returns nil when the
// intent moves nothing. The projection is derived from the After values only.
func Simulate(intent model.ActionIntent, collateral Collateral, debt Debt, params model.CollateralTypeRiskParams, global model.GlobalRiskParams) *risk.Metrics {
	if intent.IsZero() {
		return nil
	}
	m := risk.Assess(collateral.After, debt.After, params, global)
	return &m
}

// Current assesses the position as it stands. It returns nil for a position
// that does not exist yet.
func Current(collateral Collateral, debt Debt, params model.CollateralTypeRiskParams, global model.GlobalRiskParams) *risk.Metrics {
	if collateral.Current == nil {
		return nil
	}
	m := risk.Assess(*collateral.Current, debt.CurrentOrZero(), params, global)
	return &m
}

package risk

import (
	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
)

// Metrics are the solvency figures for one collateral/debt pair.
type Metrics struct {
	Collateral       fixedpoint.Amount  `json:"collateral"`
	Debt             fixedpoint.Amount  `json:"debt"`
	Ratio            Ratio              `json:"collateral_ratio"`
	LiquidationPrice *fixedpoint.Amount `json:"liquidation_price,omitempty"`
	Status           Status             `json:"status"`
}

// Assess derives ratio, liquidation price and status from collateral and owed
// debt (both WAD) and nothing else.
func Assess(collateral, debt fixedpoint.Amount, params model.CollateralTypeRiskParams, global model.GlobalRiskParams) Metrics {
	ratio := CollateralRatio(collateral, debt, params.CurrentPrice.LiquidationPrice, params.LiquidationCRatio)
	m := Metrics{
		Collateral: collateral,
		Debt:       debt,
		Ratio:      ratio,
		Status:     Classify(ratio, params.SafetyCRatio),
	}
	if price, ok := LiquidationPrice(collateral, debt, params.LiquidationCRatio, global.CurrentRedemptionPrice); ok {
		m.LiquidationPrice = &price
	}
	return m
}

// MaxWithdrawable is the collateral (WAD) that can leave the position while it
// stays at or above the safety c-ratio. Required collateral rounds up.
func MaxWithdrawable(collateral, debt, safetyPrice fixedpoint.Amount) fixedpoint.Amount {
	if debt.IsZero() {
		return collateral.MaxZero()
	}
	if safetyPrice.Sign() <= 0 {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	required := debt.DivAtUp(safetyPrice, fixedpoint.Wad)
	return collateral.Sub(required).MaxZero()
}

// CoveredAtSafetyPrice reports collateral × safetyPrice >= debt × accumulatedRate,
// compared exactly at RAD.
func CoveredAtSafetyPrice(collateral, debt, safetyPrice, accumulatedRate fixedpoint.Amount) bool {
	return collateral.Mul(safetyPrice).Cmp(debt.Mul(accumulatedRate)) >= 0
}

// DerivePrice discounts an oracle price (RAY, in quote units) by the
// redemption price and the two c-ratios, the way the oracle relayer does.
func DerivePrice(oracle, redemptionPrice, liquidationCRatio, safetyCRatio fixedpoint.Amount) model.Price {
	base := oracle.DivAt(redemptionPrice, fixedpoint.Ray)
	return model.Price{
		Value:            oracle,
		LiquidationPrice: base.DivAt(liquidationCRatio, fixedpoint.Ray),
		SafetyPrice:      base.DivAt(safetyCRatio, fixedpoint.Ray),
	}
}

const secondsPerYear = 365 * 24 * 60 * 60

// AnnualizeRate compounds a per-second rate (RAY) over one year.
func AnnualizeRate(perSecond fixedpoint.Amount) fixedpoint.Amount {
	return perSecond.Pow(secondsPerYear)
}

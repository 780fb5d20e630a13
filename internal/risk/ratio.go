package risk

import (
	"vaultRisk/internal/fixedpoint"
)

// Ratio is a collateralization ratio in percent (WAD), or infinity when a
// position carries no debt.
type Ratio struct {
	percent  fixedpoint.Amount
	infinite bool
}

// Infinite is the ratio of a debt-free position.
func Infinite() Ratio { return Ratio{infinite: true} }

// PercentRatio wraps a percentage (WAD).
func PercentRatio(percent fixedpoint.Amount) Ratio {
	return Ratio{percent: percent}
}

func (r Ratio) IsInfinite() bool { return r.infinite }

// Percent returns the ratio in percent; ok is false for an infinite ratio.
func (r Ratio) Percent() (fixedpoint.Amount, bool) {
	if r.infinite {
		return fixedpoint.Amount{}, false
	}
	return r.percent, true
}

// Cmp orders ratios, with infinity above every finite value.
func (r Ratio) Cmp(o Ratio) int {
	switch {
	case r.infinite && o.infinite:
		return 0
	case r.infinite:
		return 1
	case o.infinite:
		return -1
	default:
		return r.percent.Cmp(o.percent)
	}
}

func (r Ratio) Equal(o Ratio) bool { return r.Cmp(o) == 0 }

func (r Ratio) String() string {
	if r.infinite {
		return "∞"
	}
	return r.percent.String()
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// CollateralRatio returns collateral × liquidationPrice × liquidationCRatio
// over debt, in percent. With liquidationPrice already discounted by
// liquidationCRatio, a ratio equal to liquidationCRatio × 100 sits exactly on
// the liquidation threshold. Debt-free positions are infinite.
//
// collateral and debt are WAD; liquidationPrice and liquidationCRatio are RAY.
func CollateralRatio(collateral, debt, liquidationPrice, liquidationCRatio fixedpoint.Amount) Ratio {
	if debt.IsZero() {
		return Infinite()
	}
	value := collateral.Mul(liquidationPrice).Mul(liquidationCRatio).MulInt(100)
	return Ratio{percent: value.DivAt(debt, fixedpoint.Wad)}
}

// LiquidationPrice is the oracle price (RAY) at which the position's ratio
// equals liquidationCRatio. ok is false when collateral is zero.
//
// collateral and debt are WAD; liquidationCRatio and redemptionPrice are RAY.
func LiquidationPrice(collateral, debt, liquidationCRatio, redemptionPrice fixedpoint.Amount) (fixedpoint.Amount, bool) {
	if collateral.IsZero() {
		return fixedpoint.Amount{}, false
	}
	value := debt.Mul(liquidationCRatio).Mul(redemptionPrice)
	return value.DivAt(collateral, fixedpoint.Ray), true
}

// ThresholdPercent converts a c-ratio (RAY, e.g. 1.5) into percent (WAD, 150).
func ThresholdPercent(cRatio fixedpoint.Amount) fixedpoint.Amount {
	return cRatio.MulInt(100).RoundDown(fixedpoint.Wad)
}

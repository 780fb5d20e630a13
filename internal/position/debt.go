package position

import (
	"fmt"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
)

// DustEpsilon is the largest remainder (WAD) a repayment snaps to zero.
var DustEpsilon = fixedpoint.MustParse("0.1", fixedpoint.Wad)

// Debt is the resolved debt side of an intent, in owed debt-token units (WAD).
type Debt struct {
	// Current is nil for a position that does not exist yet.
	Current *fixedpoint.Amount `json:"current,omitempty"`
	After   fixedpoint.Amount  `json:"after"`
	// AvailableToBorrow is the additional debt the post-deposit collateral
	// supports at the safety price.
	AvailableToBorrow fixedpoint.Amount `json:"available_to_borrow"`
}

// OwedDebt converts raw debt into owed debt, rounding up.
func OwedDebt(rawDebt, accumulatedRate fixedpoint.Amount) fixedpoint.Amount {
	return orZero(rawDebt).Mul(accumulatedRate).RoundUp(fixedpoint.Wad)
}

// ResolveDebt projects the debt after the intent. collateral must come from
// ResolveCollateral for the same intent.
func ResolveDebt(vault *model.Vault, params model.CollateralTypeRiskParams, collateral Collateral, intent model.ActionIntent) Debt {
	var out Debt
	current := fixedpoint.Zero(fixedpoint.Wad)
	if vault != nil {
		current = OwedDebt(vault.RawDebt, params.AccumulatedRate)
		out.Current = &current
	}

	capacity := collateral.After.Mul(params.CurrentPrice.SafetyPrice).DivAt(params.AccumulatedRate, fixedpoint.Wad)
	out.AvailableToBorrow = capacity.Sub(current).MaxZero()

	switch intent.Kind {
	case model.ActionWithdrawRepay, model.ActionWithdrawRepayOnly:
		out.After = repaid(current, intent.Repay())
	case model.ActionCreate, model.ActionDepositBorrow, model.ActionDepositBorrowOnly:
		out.After = current.Add(intent.Borrow())
	default:
		panic(fmt.Sprintf("position: unhandled action kind %s", intent.Kind))
	}
	return out
}

func repaid(current, repay fixedpoint.Amount) fixedpoint.Amount {
	if repay.IsZero() {
		return current
	}
	remaining := current.Sub(repay)
	if remaining.Cmp(DustEpsilon) <= 0 {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return remaining
}

// CurrentOrZero returns the current debt, zero for a new position.
func (d Debt) CurrentOrZero() fixedpoint.Amount {
	if d.Current == nil {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return *d.Current
}

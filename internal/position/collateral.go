package position

import (
	"fmt"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
)

// Collateral is the resolved collateral side of an intent (WAD).
type Collateral struct {
	// Current is nil for a position that does not exist yet.
	Current *fixedpoint.Amount `json:"current,omitempty"`
	After   fixedpoint.Amount  `json:"after"`
	// AvailableToWithdraw is what the form may move: the wallet balance when
	// depositing, the position's own collateral when withdrawing. The safety
	// bound on withdrawals is applied by validation and reported separately
	// as summary.Summary.MaxWithdrawable.
	AvailableToWithdraw fixedpoint.Amount `json:"available_to_withdraw"`
}

// ResolveCollateral projects the collateral after the intent. It never
// produces a negative amount.
func ResolveCollateral(vault *model.Vault, balances model.WalletBalances, intent model.ActionIntent) Collateral {
	walletBalance := orZero(balances.Collateral)
	if vault == nil {
		return Collateral{
			After:               intent.Deposit(),
			AvailableToWithdraw: walletBalance,
		}
	}

	current := orZero(vault.RawCollateral)
	switch intent.Kind {
	case model.ActionWithdrawRepay, model.ActionWithdrawRepayOnly:
		return Collateral{
			Current:             &current,
			After:               current.Sub(intent.Withdraw()).MaxZero(),
			AvailableToWithdraw: current,
		}
	case model.ActionCreate, model.ActionDepositBorrow, model.ActionDepositBorrowOnly:
		return Collateral{
			Current:             &current,
			After:               current.Add(intent.Deposit()),
			AvailableToWithdraw: walletBalance,
		}
	default:
		panic(fmt.Sprintf("position: unhandled action kind %s", intent.Kind))
	}
}

// CurrentOrZero returns the current collateral, zero for a new position.
func (c Collateral) CurrentOrZero() fixedpoint.Amount {
	if c.Current == nil {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return *c.Current
}

func orZero(a fixedpoint.Amount) fixedpoint.Amount {
	if a.Scale() == 0 && a.IsZero() {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return a
}

package validation

import (
	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/position"
	"vaultRisk/internal/risk"
)

// Context is everything a validation run reads. Collateral and Debt must be
// resolved from the same Vault, Params and Intent.
type Context struct {
	Account  model.Account
	Vault    *model.Vault
	Intent   model.ActionIntent
	Balances model.WalletBalances
	Params   model.CollateralTypeRiskParams
	Global   model.GlobalRiskParams
	// Pristine is set while the form is untouched; an empty form then passes
	// instead of reporting a zero amount.
	Pristine bool

	Collateral position.Collateral
	Debt       position.Debt
}

type check func(c Context) Verdict

// cascade runs after the identity and zero-amount guards, in order.
var cascade = []check{
	checkBalances,
	checkBorrowCapacity,
	checkDebtFloor,
	checkSafety,
	checkGlobalDebtCeiling,
	checkVaultDebtCeiling,
}

// Validate returns the first violated invariant, or Ok. It has no side
// effects and never panics on well-formed input.
func Validate(c Context) Verdict {
	if !c.Account.HasWallet() {
		return violation(KindNoWallet, "Connect a wallet to continue")
	}
	if !c.Account.HasProxy() {
		return violation(KindNoProxy, "Create a proxy account to manage vaults")
	}

	if c.Pristine && c.Intent.IsZero() {
		return Ok()
	}
	if emptyForm(c) {
		if c.Intent.Kind == model.ActionCreate {
			return violation(KindZeroAmount, "Enter the %s amount to deposit", collateralName(c))
		}
		return violation(KindZeroAmount, "Enter an amount")
	}

	for _, fn := range cascade {
		if v := fn(c); !v.OK() {
			return v
		}
	}
	return Ok()
}

// A new vault cannot open without collateral, so create forms count as
// empty until a deposit is entered.
func emptyForm(c Context) bool {
	if c.Intent.Kind == model.ActionCreate {
		return c.Intent.Deposit().IsZero()
	}
	return c.Intent.IsZero()
}

func checkBalances(c Context) Verdict {
	deposit := c.Intent.Deposit()
	if deposit.Sign() > 0 && deposit.GreaterThan(orWad(c.Balances.Collateral)) {
		return violation(KindInsufficientCollateral, "Insufficient %s balance", collateralName(c))
	}

	withdraw := c.Intent.Withdraw()
	if withdraw.Sign() > 0 && withdraw.GreaterThan(c.Collateral.CurrentOrZero()) {
		return violation(KindWithdrawExceedsCollateral, "Withdraw amount exceeds the vault's %s collateral", collateralName(c))
	}

	repay := c.Intent.Repay()
	if repay.Sign() > 0 && repay.GreaterThan(orWad(c.Balances.DebtToken)) {
		return violation(KindInsufficientDebtToken, "Insufficient debt token balance to repay")
	}
	if repay.Sign() > 0 && repay.GreaterThan(c.Debt.CurrentOrZero()) {
		return violation(KindRepayExceedsOwed, "Repay amount exceeds the vault's debt")
	}
	return Ok()
}

func checkBorrowCapacity(c Context) Verdict {
	borrow := c.Intent.Borrow()
	if borrow.Sign() > 0 && borrow.GreaterThan(c.Debt.AvailableToBorrow) {
		return violation(KindCollateralRatio,
			"Borrow amount exceeds what the collateral supports at the %s%% safety ratio",
			risk.ThresholdPercent(c.Params.SafetyCRatio).Format(2))
	}
	return Ok()
}

func checkDebtFloor(c Context) Verdict {
	after := c.Debt.After
	if after.IsZero() || !after.LessThan(orWad(c.Params.DebtFloor)) {
		return Ok()
	}
	floor := orWad(c.Params.DebtFloor).Format(2)
	if c.Intent.Kind == model.ActionCreate {
		return violation(KindMinimumMint, "A new vault must mint at least %s", floor)
	}
	return violation(KindDebtBelowFloor, "Vault debt must be zero or at least %s", floor)
}

// checkSafety compares the projected position at the safety price in RAD,
// the same terms the borrow capacity is derived from. Risk-reducing intents
// are always allowed.
func checkSafety(c Context) Verdict {
	if !c.Intent.IncreasesRisk() {
		return Ok()
	}
	if risk.CoveredAtSafetyPrice(c.Collateral.After, c.Debt.After,
		c.Params.CurrentPrice.SafetyPrice, c.Params.AccumulatedRate) {
		return Ok()
	}
	return violation(KindCollateralRatio,
		"Collateral ratio would fall below the %s%% safety ratio",
		risk.ThresholdPercent(c.Params.SafetyCRatio).Format(2))
}

func checkGlobalDebtCeiling(c Context) Verdict {
	borrow := c.Intent.Borrow()
	ceiling := orWad(c.Global.GlobalDebtCeiling)
	if borrow.IsZero() || ceiling.IsZero() {
		return Ok()
	}
	if orWad(c.Global.GlobalDebt).Add(borrow).GreaterThan(ceiling) {
		return violation(KindGlobalDebtCeiling, "Borrow amount exceeds the protocol debt ceiling")
	}
	return Ok()
}

func checkVaultDebtCeiling(c Context) Verdict {
	ceiling := orWad(c.Params.PerVaultDebtCeiling)
	if c.Intent.Borrow().IsZero() || ceiling.IsZero() {
		return Ok()
	}
	if c.Debt.After.GreaterThan(ceiling) {
		return violation(KindPerVaultDebtCeiling, "Vault debt would exceed the per-vault ceiling of %s", ceiling.Format(2))
	}
	return Ok()
}

func collateralName(c Context) string {
	if c.Params.ID != "" {
		return c.Params.ID
	}
	if c.Vault != nil && c.Vault.CollateralTypeID != "" {
		return c.Vault.CollateralTypeID
	}
	return "collateral"
}

func orWad(a fixedpoint.Amount) fixedpoint.Amount {
	if a.Scale() == 0 && a.IsZero() {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return a
}

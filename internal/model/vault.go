package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"vaultRisk/internal/fixedpoint"
)

// Vault is a read-only view of an on-chain position.
type Vault struct {
	ID               string
	CollateralTypeID string
	// RawCollateral is the locked collateral (WAD).
	RawCollateral fixedpoint.Amount
	// RawDebt is the generated debt before the accumulated rate (WAD).
	RawDebt fixedpoint.Amount
	// Indexed holds metrics an external indexer computed, if any. It is carried
	// for display only and never feeds the risk calculation.
	Indexed *IndexedMetrics
}

// IndexedMetrics is an indexer-computed snapshot of a vault's risk.
type IndexedMetrics struct {
	CollateralRatio  string
	LiquidationPrice string
}

// Price groups the oracle price and its two ratio-discounted forms (RAY).
type Price struct {
	Value            fixedpoint.Amount
	LiquidationPrice fixedpoint.Amount
	SafetyPrice      fixedpoint.Amount
}

// CollateralTypeRiskParams are the per-collateral risk settings.
type CollateralTypeRiskParams struct {
	ID                string
	LiquidationCRatio fixedpoint.Amount // RAY
	SafetyCRatio      fixedpoint.Amount // RAY
	CurrentPrice      Price
	DebtFloor         fixedpoint.Amount // WAD
	// PerVaultDebtCeiling is zero when no ceiling applies (WAD).
	PerVaultDebtCeiling fixedpoint.Amount
	// TotalAnnualizedStabilityFee is a yearly multiplier, e.g. 1.05 (RAY).
	TotalAnnualizedStabilityFee fixedpoint.Amount
	// LiquidationPenalty is a multiplier applied on liquidation, e.g. 1.1 (WAD).
	LiquidationPenalty fixedpoint.Amount
	// AccumulatedRate converts raw debt into owed debt (RAY).
	AccumulatedRate fixedpoint.Amount
}

// Validate checks scales and the ordering safetyCRatio >= liquidationCRatio >= 1.
func (p CollateralTypeRiskParams) Validate() error {
	checks := []struct {
		name  string
		value fixedpoint.Amount
		scale fixedpoint.Scale
	}{
		{"liquidation c-ratio", p.LiquidationCRatio, fixedpoint.Ray},
		{"safety c-ratio", p.SafetyCRatio, fixedpoint.Ray},
		{"price value", p.CurrentPrice.Value, fixedpoint.Ray},
		{"liquidation price", p.CurrentPrice.LiquidationPrice, fixedpoint.Ray},
		{"safety price", p.CurrentPrice.SafetyPrice, fixedpoint.Ray},
		{"stability fee", p.TotalAnnualizedStabilityFee, fixedpoint.Ray},
		{"accumulated rate", p.AccumulatedRate, fixedpoint.Ray},
		{"debt floor", p.DebtFloor, fixedpoint.Wad},
		{"per-vault debt ceiling", p.PerVaultDebtCeiling, fixedpoint.Wad},
		{"liquidation penalty", p.LiquidationPenalty, fixedpoint.Wad},
	}
	for _, c := range checks {
		if c.value.Scale() != c.scale {
			return fmt.Errorf("%s: %s: want %s, got %s", p.ID, c.name, c.scale, c.value.Scale())
		}
		if c.value.IsNegative() {
			return fmt.Errorf("%s: %s is negative", p.ID, c.name)
		}
	}

	one := fixedpoint.FromInt(1, fixedpoint.Ray)
	if p.LiquidationCRatio.LessThan(one) {
		return fmt.Errorf("%s: liquidation c-ratio %s below 1", p.ID, p.LiquidationCRatio)
	}
	if p.SafetyCRatio.LessThan(p.LiquidationCRatio) {
		return fmt.Errorf("%s: safety c-ratio %s below liquidation c-ratio %s", p.ID, p.SafetyCRatio, p.LiquidationCRatio)
	}
	if p.AccumulatedRate.IsZero() {
		return fmt.Errorf("%s: accumulated rate is zero", p.ID)
	}
	return nil
}

// GlobalRiskParams are the protocol-wide settings.
type GlobalRiskParams struct {
	// GlobalDebtCeiling is zero when no ceiling applies (WAD).
	GlobalDebtCeiling fixedpoint.Amount
	// GlobalDebt is the outstanding system debt (WAD).
	GlobalDebt fixedpoint.Amount
	// CurrentRedemptionPrice is the debt token's unit price (RAY).
	CurrentRedemptionPrice fixedpoint.Amount
}

// Validate checks scales.
func (g GlobalRiskParams) Validate() error {
	if g.GlobalDebtCeiling.Scale() != fixedpoint.Wad || g.GlobalDebt.Scale() != fixedpoint.Wad {
		return fmt.Errorf("global debt values must be WAD")
	}
	if g.CurrentRedemptionPrice.Scale() != fixedpoint.Ray {
		return fmt.Errorf("redemption price must be RAY, got %s", g.CurrentRedemptionPrice.Scale())
	}
	if g.CurrentRedemptionPrice.Sign() <= 0 {
		return fmt.Errorf("redemption price must be positive")
	}
	return nil
}

// Account is the connected identity. A zero address means absent.
type Account struct {
	Wallet common.Address
	Proxy  common.Address
}

func (a Account) HasWallet() bool { return a.Wallet != (common.Address{}) }

func (a Account) HasProxy() bool { return a.Proxy != (common.Address{}) }

// WalletBalances are the connected wallet's token balances (WAD).
type WalletBalances struct {
	Collateral fixedpoint.Amount
	DebtToken  fixedpoint.Amount
}

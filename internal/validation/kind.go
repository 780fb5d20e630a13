package validation

import "fmt"

// Kind names an invariant a proposed action violates.
type Kind uint8

const (
	KindNone Kind = iota
	KindNoWallet
	KindNoProxy
	KindZeroAmount
	KindInsufficientCollateral
	KindWithdrawExceedsCollateral
	KindInsufficientDebtToken
	KindRepayExceedsOwed
	KindDebtBelowFloor
	KindMinimumMint
	KindCollateralRatio
	KindGlobalDebtCeiling
	KindPerVaultDebtCeiling
)

var kindNames = [...]string{
	KindNone:                      "none",
	KindNoWallet:                  "no_wallet",
	KindNoProxy:                   "no_proxy",
	KindZeroAmount:                "zero_amount",
	KindInsufficientCollateral:    "insufficient_collateral",
	KindWithdrawExceedsCollateral: "withdraw_exceeds_collateral",
	KindInsufficientDebtToken:     "insufficient_debt_token",
	KindRepayExceedsOwed:          "repay_exceeds_owed",
	KindDebtBelowFloor:            "debt_below_floor",
	KindMinimumMint:               "minimum_mint",
	KindCollateralRatio:           "collateral_ratio",
	KindGlobalDebtCeiling:         "global_debt_ceiling",
	KindPerVaultDebtCeiling:       "per_vault_debt_ceiling",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Verdict is the outcome of a validation run: either OK or exactly one
// violation with a user-facing message.
type Verdict struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

// Ok is the passing verdict.
func Ok() Verdict { return Verdict{Kind: KindNone} }

func (v Verdict) OK() bool { return v.Kind == KindNone }

func violation(kind Kind, format string, args ...interface{}) Verdict {
	return Verdict{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

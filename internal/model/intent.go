package model

import (
	"errors"
	"fmt"
	"strings"

	"vaultRisk/internal/fixedpoint"
)

// ErrInvalidIntent is wrapped by every intent construction failure.
var ErrInvalidIntent = errors.New("invalid action intent")

// ActionKind is the closed set of vault form actions.
type ActionKind uint8

const (
	ActionCreate ActionKind = iota + 1
	ActionDepositBorrow
	ActionWithdrawRepay
	// ActionDepositBorrowOnly is a single-leg deposit or borrow.
	ActionDepositBorrowOnly
	// ActionWithdrawRepayOnly is a single-leg withdraw or repay.
	ActionWithdrawRepayOnly
)

var actionNames = map[ActionKind]string{
	ActionCreate:            "create",
	ActionDepositBorrow:     "deposit-borrow",
	ActionWithdrawRepay:     "withdraw-repay",
	ActionDepositBorrowOnly: "deposit-borrow-only",
	ActionWithdrawRepayOnly: "withdraw-repay-only",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseActionKind resolves a kind from its name.
func ParseActionKind(name string) (ActionKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range actionNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidIntent, name)
}

// Adds reports whether the kind moves collateral in and debt out.
func (k ActionKind) Adds() bool {
	switch k {
	case ActionCreate, ActionDepositBorrow, ActionDepositBorrowOnly:
		return true
	case ActionWithdrawRepay, ActionWithdrawRepayOnly:
		return false
	default:
		panic(fmt.Sprintf("model: unhandled action kind %d", uint8(k)))
	}
}

// SingleLeg reports whether at most one delta may be non-zero.
func (k ActionKind) SingleLeg() bool {
	switch k {
	case ActionDepositBorrowOnly, ActionWithdrawRepayOnly:
		return true
	case ActionCreate, ActionDepositBorrow, ActionWithdrawRepay:
		return false
	default:
		panic(fmt.Sprintf("model: unhandled action kind %d", uint8(k)))
	}
}

// ActionIntent is a proposed change to a vault. CollateralDelta is positive
// for deposits and negative for withdrawals; DebtDelta is positive for
// borrows and negative for repayments. Both are WAD.
type ActionIntent struct {
	Kind            ActionKind
	CollateralDelta fixedpoint.Amount
	DebtDelta       fixedpoint.Amount
}

// NewIntent builds an intent, checking the delta signs against the kind.
func NewIntent(kind ActionKind, collateralDelta, debtDelta fixedpoint.Amount) (ActionIntent, error) {
	if _, ok := actionNames[kind]; !ok {
		return ActionIntent{}, fmt.Errorf("%w: unknown action kind %d", ErrInvalidIntent, uint8(kind))
	}
	collateralDelta = wadOrZero(collateralDelta)
	debtDelta = wadOrZero(debtDelta)
	if collateralDelta.Scale() != fixedpoint.Wad || debtDelta.Scale() != fixedpoint.Wad {
		return ActionIntent{}, fmt.Errorf("%w: deltas must be WAD", ErrInvalidIntent)
	}

	if kind.Adds() {
		if collateralDelta.IsNegative() || debtDelta.IsNegative() {
			return ActionIntent{}, fmt.Errorf("%w: %s takes non-negative deltas", ErrInvalidIntent, kind)
		}
	} else if collateralDelta.Sign() > 0 || debtDelta.Sign() > 0 {
		return ActionIntent{}, fmt.Errorf("%w: %s takes non-positive deltas", ErrInvalidIntent, kind)
	}

	if kind.SingleLeg() && !collateralDelta.IsZero() && !debtDelta.IsZero() {
		return ActionIntent{}, fmt.Errorf("%w: %s moves a single leg", ErrInvalidIntent, kind)
	}

	return ActionIntent{Kind: kind, CollateralDelta: collateralDelta, DebtDelta: debtDelta}, nil
}

// ParseIntent builds an intent from unsigned form inputs; the direction comes
// from the kind. Empty inputs mean zero.
func ParseIntent(kind ActionKind, collateralInput, debtInput string) (ActionIntent, error) {
	collateral, err := parseFormAmount(collateralInput)
	if err != nil {
		return ActionIntent{}, fmt.Errorf("collateral: %w", err)
	}
	debt, err := parseFormAmount(debtInput)
	if err != nil {
		return ActionIntent{}, fmt.Errorf("debt: %w", err)
	}
	if _, ok := actionNames[kind]; ok && !kind.Adds() {
		collateral = collateral.Neg()
		debt = debt.Neg()
	}
	return NewIntent(kind, collateral, debt)
}

func parseFormAmount(input string) (fixedpoint.Amount, error) {
	if strings.TrimSpace(input) == "" {
		return fixedpoint.Zero(fixedpoint.Wad), nil
	}
	return fixedpoint.Parse(input, fixedpoint.Wad)
}

func wadOrZero(a fixedpoint.Amount) fixedpoint.Amount {
	if a.Raw().Sign() == 0 && a.Scale() == 0 {
		return fixedpoint.Zero(fixedpoint.Wad)
	}
	return a
}

// Deposit is the collateral moved in.
func (i ActionIntent) Deposit() fixedpoint.Amount {
	return wadOrZero(i.CollateralDelta).MaxZero()
}

// Withdraw is the collateral moved out, as a magnitude.
func (i ActionIntent) Withdraw() fixedpoint.Amount {
	return wadOrZero(i.CollateralDelta).Neg().MaxZero()
}

// Borrow is the debt generated.
func (i ActionIntent) Borrow() fixedpoint.Amount {
	return wadOrZero(i.DebtDelta).MaxZero()
}

// Repay is the debt repaid, as a magnitude.
func (i ActionIntent) Repay() fixedpoint.Amount {
	return wadOrZero(i.DebtDelta).Neg().MaxZero()
}

// IsZero reports whether both deltas are zero.
func (i ActionIntent) IsZero() bool {
	return i.CollateralDelta.IsZero() && i.DebtDelta.IsZero()
}

// IncreasesRisk reports whether the intent borrows or withdraws.
func (i ActionIntent) IncreasesRisk() bool {
	return i.Borrow().Sign() > 0 || i.Withdraw().Sign() > 0
}

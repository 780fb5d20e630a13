package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"vaultRisk/internal/model"
	"vaultRisk/internal/position"
	"vaultRisk/internal/risk"
	"vaultRisk/internal/summary"
	"vaultRisk/internal/validation"
)

// Input is one evaluation request: a read-only snapshot plus the form state.
type Input struct {
	Account  model.Account
	Vault    *model.Vault
	Params   model.CollateralTypeRiskParams
	Global   model.GlobalRiskParams
	Balances model.WalletBalances
	Intent   model.ActionIntent
	Pristine bool
}

// Result bundles every figure derived for an Input.
type Result struct {
	Collateral position.Collateral `json:"collateral"`
	Debt       position.Debt       `json:"debt"`
	Current    *risk.Metrics       `json:"current,omitempty"`
	Simulation *risk.Metrics       `json:"simulation,omitempty"`
	Verdict    validation.Verdict  `json:"verdict"`
	Summary    summary.Summary     `json:"summary"`
}

// Engine runs the resolve, validate, simulate and summarize steps. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	opts   summary.Options
}

func New(logger *zap.Logger, opts summary.Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, opts: opts}
}

// Evaluate computes the result for in. Errors report a malformed snapshot,
// never a rule violation; those come back in Result.Verdict.
func (e *Engine) Evaluate(in Input) (Result, error) {
	if err := in.Params.Validate(); err != nil {
		return Result{}, fmt.Errorf("collateral params: %w", err)
	}
	if err := in.Global.Validate(); err != nil {
		return Result{}, fmt.Errorf("global params: %w", err)
	}
	if in.Vault != nil && in.Vault.CollateralTypeID != "" && in.Params.ID != "" && in.Vault.CollateralTypeID != in.Params.ID {
		return Result{}, fmt.Errorf("vault %s is %s, params are for %s", in.Vault.ID, in.Vault.CollateralTypeID, in.Params.ID)
	}

	collateral := position.ResolveCollateral(in.Vault, in.Balances, in.Intent)
	debt := position.ResolveDebt(in.Vault, in.Params, collateral, in.Intent)

	verdict := validation.Validate(validation.Context{
		Account:    in.Account,
		Vault:      in.Vault,
		Intent:     in.Intent,
		Balances:   in.Balances,
		Params:     in.Params,
		Global:     in.Global,
		Pristine:   in.Pristine,
		Collateral: collateral,
		Debt:       debt,
	})

	current := position.Current(collateral, debt, in.Params, in.Global)
	simulation := position.Simulate(in.Intent, collateral, debt, in.Params, in.Global)

	result := Result{
		Collateral: collateral,
		Debt:       debt,
		Current:    current,
		Simulation: simulation,
		Verdict:    verdict,
		Summary:    summary.Build(current, simulation, in.Params, e.opts),
	}

	e.logger.Debug("vault evaluated",
		zap.String("vault", vaultID(in.Vault)),
		zap.String("collateral_type", in.Params.ID),
		zap.Stringer("action", in.Intent.Kind),
		zap.Stringer("verdict", verdict.Kind),
		zap.Bool("preview", simulation != nil),
	)

	return result, nil
}

// Record flattens a result for storage.
func (r Result) Record(in Input, block uint64, evaluatedAt time.Time) model.EvaluationRecord {
	rec := model.EvaluationRecord{
		VaultID:         vaultID(in.Vault),
		CollateralType:  in.Params.ID,
		Block:           block,
		Action:          in.Intent.Kind.String(),
		CollateralDelta: in.Intent.CollateralDelta.String(),
		DebtDelta:       in.Intent.DebtDelta.String(),
		VerdictKind:     r.Verdict.Kind.String(),
		VerdictMessage:  r.Verdict.Message,
		EvaluatedAt:     evaluatedAt.UTC(),
	}
	if sim := r.Simulation; sim != nil {
		rec.CollateralAfter = stringPtr(sim.Collateral.String())
		rec.DebtAfter = stringPtr(sim.Debt.String())
		rec.RatioAfter = stringPtr(sim.Ratio.String())
		rec.StatusAfter = stringPtr(sim.Status.String())
		if sim.LiquidationPrice != nil {
			rec.LiquidationPrice = stringPtr(sim.LiquidationPrice.String())
		}
	}
	return rec
}

func vaultID(v *model.Vault) string {
	if v == nil {
		return "new"
	}
	return v.ID
}

func stringPtr(s string) *string {
	return &s
}

package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
	"vaultRisk/internal/summary"
	"vaultRisk/internal/validation"
)

func wad(s string) fixedpoint.Amount { return fixedpoint.MustParse(s, fixedpoint.Wad) }
func ray(s string) fixedpoint.Amount { return fixedpoint.MustParse(s, fixedpoint.Ray) }

func baseInput(t *testing.T, vault *model.Vault, kind model.ActionKind, collateral, debt string) Input {
	t.Helper()
	intent, err := model.ParseIntent(kind, collateral, debt)
	require.NoError(t, err)
	return Input{
		Account: model.Account{
			Wallet: common.HexToAddress("0x1111111111111111111111111111111111111111"),
			Proxy:  common.HexToAddress("0x2222222222222222222222222222222222222222"),
		},
		Vault: vault,
		Params: model.CollateralTypeRiskParams{
			ID:                          "WETH",
			LiquidationCRatio:           ray("1.25"),
			SafetyCRatio:                ray("1.6"),
			CurrentPrice:                risk.DerivePrice(ray("2000"), ray("1"), ray("1.25"), ray("1.6")),
			DebtFloor:                   wad("200"),
			PerVaultDebtCeiling:         wad("0"),
			TotalAnnualizedStabilityFee: ray("1.05"),
			LiquidationPenalty:          wad("1.1"),
			AccumulatedRate:             ray("1"),
		},
		Global: model.GlobalRiskParams{
			GlobalDebtCeiling:      wad("0"),
			GlobalDebt:             wad("0"),
			CurrentRedemptionPrice: ray("1"),
		},
		Balances: model.WalletBalances{Collateral: wad("50"), DebtToken: wad("10000")},
		Intent:   intent,
	}
}

func existingVault() *model.Vault {
	return &model.Vault{ID: "101", CollateralTypeID: "WETH", RawCollateral: wad("10"), RawDebt: wad("5000")}
}

func TestEvaluateDepositBorrow(t *testing.T) {
	eng := New(nil, summary.Options{})
	res, err := eng.Evaluate(baseInput(t, existingVault(), model.ActionDepositBorrow, "2", "1000"))
	require.NoError(t, err)

	assert.True(t, res.Verdict.OK(), "verdict %+v", res.Verdict)
	assert.Equal(t, "12", res.Collateral.After.String())
	assert.Equal(t, "6000", res.Debt.After.String())
	assert.Equal(t, "10000", res.Debt.AvailableToBorrow.String())

	require.NotNil(t, res.Current)
	require.NotNil(t, res.Simulation)
	assert.Equal(t, "400", res.Current.Ratio.String())
	assert.Equal(t, "400", res.Simulation.Ratio.String())
	assert.Equal(t, "625", res.Simulation.LiquidationPrice.String())
	assert.Equal(t, risk.StatusUltraSafe, res.Simulation.Status)

	assert.Equal(t, "400%", res.Summary.CollateralRatio.Current.Display)
	assert.Equal(t, "5%", res.Summary.StabilityFee.After.Display)
}

func TestEvaluatePristineCreate(t *testing.T) {
	eng := New(nil, summary.Options{})
	in := baseInput(t, nil, model.ActionCreate, "", "")
	in.Pristine = true

	res, err := eng.Evaluate(in)
	require.NoError(t, err)
	assert.True(t, res.Verdict.OK())
	assert.Nil(t, res.Current)
	assert.Nil(t, res.Simulation)
	assert.Nil(t, res.Summary.Collateral.After)
}

func TestEvaluateRepayDust(t *testing.T) {
	vault := existingVault()
	vault.RawDebt = wad("100")
	in := baseInput(t, vault, model.ActionWithdrawRepay, "", "99.95")
	in.Params.DebtFloor = wad("50")

	res, err := New(nil, summary.Options{}).Evaluate(in)
	require.NoError(t, err)
	assert.True(t, res.Verdict.OK())
	assert.True(t, res.Debt.After.IsZero())
	require.NotNil(t, res.Simulation)
	assert.True(t, res.Simulation.Ratio.IsInfinite())
}

func TestEvaluateRejectsBadSnapshot(t *testing.T) {
	in := baseInput(t, existingVault(), model.ActionDepositBorrow, "1", "")
	in.Params.SafetyCRatio = ray("1.1")
	_, err := New(nil, summary.Options{}).Evaluate(in)
	assert.Error(t, err)

	in = baseInput(t, existingVault(), model.ActionDepositBorrow, "1", "")
	in.Global.CurrentRedemptionPrice = wad("1")
	_, err = New(nil, summary.Options{}).Evaluate(in)
	assert.Error(t, err)

	in = baseInput(t, existingVault(), model.ActionDepositBorrow, "1", "")
	in.Vault.CollateralTypeID = "WSTETH"
	_, err = New(nil, summary.Options{}).Evaluate(in)
	assert.Error(t, err)
}

func TestEvaluateLogsVerdict(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	eng := New(zap.New(core), summary.Options{})

	_, err := eng.Evaluate(baseInput(t, existingVault(), model.ActionWithdrawRepay, "12", ""))
	require.NoError(t, err)

	entries := logs.FilterMessage("vault evaluated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "101", fields["vault"])
	assert.Equal(t, "withdraw_exceeds_collateral", fields["verdict"])
}

func TestEvaluateConcurrentSharedSnapshot(t *testing.T) {
	eng := New(nil, summary.Options{})
	in := baseInput(t, existingVault(), model.ActionDepositBorrow, "1", "2500")
	want, err := eng.Evaluate(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = eng.Evaluate(in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.Verdict, got.Verdict)
		assert.True(t, want.Simulation.Ratio.Equal(got.Simulation.Ratio))
	}
}

func TestRecord(t *testing.T) {
	in := baseInput(t, existingVault(), model.ActionDepositBorrow, "0", "20000")
	res, err := New(nil, summary.Options{}).Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, validation.KindCollateralRatio, res.Verdict.Kind)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := res.Record(in, 19000000, at)
	assert.Equal(t, "101", rec.VaultID)
	assert.Equal(t, "WETH", rec.CollateralType)
	assert.Equal(t, "deposit-borrow", rec.Action)
	assert.Equal(t, "20000", rec.DebtDelta)
	assert.Equal(t, "collateral_ratio", rec.VerdictKind)
	require.NotNil(t, rec.DebtAfter)
	assert.Equal(t, "25000", *rec.DebtAfter)
	require.NotNil(t, rec.StatusAfter)
	assert.Equal(t, "unsafe", *rec.StatusAfter)
	assert.Equal(t, at, rec.EvaluatedAt)
}

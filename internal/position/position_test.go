package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
)

func wad(s string) fixedpoint.Amount { return fixedpoint.MustParse(s, fixedpoint.Wad) }
func ray(s string) fixedpoint.Amount { return fixedpoint.MustParse(s, fixedpoint.Ray) }

func testParams() model.CollateralTypeRiskParams {
	return model.CollateralTypeRiskParams{
		ID:                          "WETH",
		LiquidationCRatio:           ray("1.25"),
		SafetyCRatio:                ray("1.6"),
		CurrentPrice:                risk.DerivePrice(ray("2000"), ray("1"), ray("1.25"), ray("1.6")),
		DebtFloor:                   wad("200"),
		PerVaultDebtCeiling:         wad("0"),
		TotalAnnualizedStabilityFee: ray("1.05"),
		LiquidationPenalty:          wad("1.1"),
		AccumulatedRate:             ray("1"),
	}
}

func testGlobal() model.GlobalRiskParams {
	return model.GlobalRiskParams{
		GlobalDebtCeiling:      wad("0"),
		GlobalDebt:             wad("0"),
		CurrentRedemptionPrice: ray("1"),
	}
}

func mustIntent(t *testing.T, kind model.ActionKind, collateral, debt string) model.ActionIntent {
	t.Helper()
	intent, err := model.ParseIntent(kind, collateral, debt)
	require.NoError(t, err)
	return intent
}

func testVault(collateral, rawDebt string) *model.Vault {
	return &model.Vault{
		ID:               "42",
		CollateralTypeID: "WETH",
		RawCollateral:    wad(collateral),
		RawDebt:          wad(rawDebt),
	}
}

func TestResolveCollateralNewPosition(t *testing.T) {
	balances := model.WalletBalances{Collateral: wad("7"), DebtToken: wad("0")}
	got := ResolveCollateral(nil, balances, mustIntent(t, model.ActionCreate, "2", "100"))

	assert.Nil(t, got.Current)
	assert.Equal(t, "2", got.After.String())
	assert.Equal(t, "7", got.AvailableToWithdraw.String())
}

func TestResolveCollateralExisting(t *testing.T) {
	balances := model.WalletBalances{Collateral: wad("7"), DebtToken: wad("0")}
	vault := testVault("10", "0")

	deposit := ResolveCollateral(vault, balances, mustIntent(t, model.ActionDepositBorrow, "2.5", ""))
	require.NotNil(t, deposit.Current)
	assert.Equal(t, "10", deposit.Current.String())
	assert.Equal(t, "12.5", deposit.After.String())
	assert.Equal(t, "7", deposit.AvailableToWithdraw.String())

	withdraw := ResolveCollateral(vault, balances, mustIntent(t, model.ActionWithdrawRepay, "4", ""))
	assert.Equal(t, "6", withdraw.After.String())
	assert.Equal(t, "10", withdraw.AvailableToWithdraw.String())

	over := ResolveCollateral(vault, balances, mustIntent(t, model.ActionWithdrawRepayOnly, "12", ""))
	assert.True(t, over.After.IsZero())
}

func TestResolveDebtOwedAppliesRate(t *testing.T) {
	params := testParams()
	params.AccumulatedRate = ray("1.1")
	vault := testVault("10", "1000")
	intent := mustIntent(t, model.ActionDepositBorrow, "", "")

	collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
	debt := ResolveDebt(vault, params, collateral, intent)

	require.NotNil(t, debt.Current)
	assert.Equal(t, "1100", debt.Current.String())
	assert.Equal(t, "1100", debt.After.String())
}

func TestResolveDebtAvailableToBorrow(t *testing.T) {
	params := testParams() // safety price 1250

	create := mustIntent(t, model.ActionCreate, "2", "")
	collateral := ResolveCollateral(nil, model.WalletBalances{}, create)
	debt := ResolveDebt(nil, params, collateral, create)
	assert.Nil(t, debt.Current)
	assert.Equal(t, "2500", debt.AvailableToBorrow.String())

	vault := testVault("10", "4000")
	more := mustIntent(t, model.ActionDepositBorrow, "2", "500")
	collateral = ResolveCollateral(vault, model.WalletBalances{}, more)
	debt = ResolveDebt(vault, params, collateral, more)
	// 12 * 1250 = 15000 capacity, 4000 already owed
	assert.Equal(t, "11000", debt.AvailableToBorrow.String())
	assert.Equal(t, "4500", debt.After.String())

	underwater := testVault("1", "4000")
	collateral = ResolveCollateral(underwater, model.WalletBalances{}, more)
	debt = ResolveDebt(underwater, params, collateral, more)
	assert.True(t, debt.AvailableToBorrow.IsZero())
}

func TestResolveDebtRepaySnapsDust(t *testing.T) {
	params := testParams()
	vault := testVault("10", "100")

	tests := []struct {
		name  string
		repay string
		want  string
	}{
		{name: "near full", repay: "99.95", want: "0"},
		{name: "at epsilon", repay: "99.9", want: "0"},
		{name: "above epsilon", repay: "99.8", want: "0.2"},
		{name: "full", repay: "100", want: "0"},
		{name: "over", repay: "150", want: "0"},
		{name: "partial", repay: "40", want: "60"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := mustIntent(t, model.ActionWithdrawRepay, "", tt.repay)
			collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
			debt := ResolveDebt(vault, params, collateral, intent)
			assert.Equal(t, tt.want, debt.After.String())
		})
	}
}

func TestResolveDebtNoRepayKeepsDust(t *testing.T) {
	vault := testVault("10", "0.05")
	intent := mustIntent(t, model.ActionWithdrawRepay, "1", "")
	collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
	debt := ResolveDebt(vault, testParams(), collateral, intent)
	assert.Equal(t, "0.05", debt.After.String())
}

func TestSimulateNilForZeroIntent(t *testing.T) {
	vault := testVault("10", "1000")
	intent := mustIntent(t, model.ActionDepositBorrow, "0", "")
	collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
	debt := ResolveDebt(vault, testParams(), collateral, intent)

	assert.Nil(t, Simulate(intent, collateral, debt, testParams(), testGlobal()))
}

func TestSimulateMatchesIndependentRatio(t *testing.T) {
	params := testParams()
	global := testGlobal()
	vault := testVault("10", "5000")

	intents := []model.ActionIntent{
		mustIntent(t, model.ActionDepositBorrow, "1", "1000"),
		mustIntent(t, model.ActionWithdrawRepay, "3", "2000"),
		mustIntent(t, model.ActionWithdrawRepayOnly, "", "4999.95"),
		mustIntent(t, model.ActionDepositBorrowOnly, "0.000000000000000001", ""),
	}
	for _, intent := range intents {
		collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
		debt := ResolveDebt(vault, params, collateral, intent)

		projection := Simulate(intent, collateral, debt, params, global)
		require.NotNil(t, projection)

		want := risk.CollateralRatio(collateral.After, debt.After, params.CurrentPrice.LiquidationPrice, params.LiquidationCRatio)
		assert.True(t, want.Equal(projection.Ratio), "%s: %s != %s", intent.Kind, want, projection.Ratio)
		assert.True(t, collateral.After.Equal(projection.Collateral))
		assert.True(t, debt.After.Equal(projection.Debt))
	}
}

func TestSimulateIgnoresCurrentMetrics(t *testing.T) {
	params := testParams()
	global := testGlobal()
	vault := testVault("10", "5000")
	vault.Indexed = &model.IndexedMetrics{CollateralRatio: "1", LiquidationPrice: "99999"}

	intent := mustIntent(t, model.ActionDepositBorrow, "10", "")
	collateral := ResolveCollateral(vault, model.WalletBalances{}, intent)
	debt := ResolveDebt(vault, params, collateral, intent)

	current := Current(collateral, debt, params, global)
	after := Simulate(intent, collateral, debt, params, global)
	require.NotNil(t, current)
	require.NotNil(t, after)

	currentPct, _ := current.Ratio.Percent()
	afterPct, _ := after.Ratio.Percent()
	assert.Equal(t, "400", currentPct.String())
	assert.Equal(t, "800", afterPct.String())
	require.NotNil(t, after.LiquidationPrice)
	assert.Equal(t, "312.5", after.LiquidationPrice.String())
}

func TestCurrentNilForNewPosition(t *testing.T) {
	intent := mustIntent(t, model.ActionCreate, "1", "")
	collateral := ResolveCollateral(nil, model.WalletBalances{}, intent)
	debt := ResolveDebt(nil, testParams(), collateral, intent)
	assert.Nil(t, Current(collateral, debt, testParams(), testGlobal()))
}

package summary

import (
	"encoding/json"
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
		TotalAnnualizedStabilityFee: ray("1.035"),
		AccumulatedRate:             ray("1"),
	}
}

func TestBuildCurrentAndAfter(t *testing.T) {
	params := testParams()
	global := model.GlobalRiskParams{CurrentRedemptionPrice: ray("1")}

	current := risk.Assess(wad("10"), wad("5000"), params, global)
	after := risk.Assess(wad("10"), wad("7500.123456"), params, global)

	s := Build(&current, &after, params, Options{})

	require.NotNil(t, s.Collateral.Current)
	assert.Equal(t, "10", s.Collateral.Current.Display)
	assert.Equal(t, "7500.1234", s.Debt.After.Display)
	assert.Equal(t, "7500.123456", s.Debt.After.Raw.String())

	assert.Equal(t, "400%", s.CollateralRatio.Current.Display)
	assert.Equal(t, "266.66%", s.CollateralRatio.After.Display)

	assert.Equal(t, "625.00", s.LiquidationPrice.Current.Display)
	assert.Equal(t, "3.5%", s.StabilityFee.Current.Display)
	assert.Equal(t, "3.5%", s.StabilityFee.After.Display)

	// safety price 1250: 5000 owed needs 4
	assert.Equal(t, "6", s.MaxWithdrawable.Current.Display)
}

func TestBuildNewPositionWithoutPreview(t *testing.T) {
	s := Build(nil, nil, testParams(), Options{})
	assert.Nil(t, s.Collateral.Current)
	assert.Nil(t, s.Collateral.After)
	assert.Nil(t, s.LiquidationPrice.After)
}

func TestBuildInfiniteRatio(t *testing.T) {
	params := testParams()
	global := model.GlobalRiskParams{CurrentRedemptionPrice: ray("1")}
	after := risk.Assess(wad("3"), wad("0"), params, global)

	s := Build(nil, &after, params, Options{AmountDecimals: 2})
	require.NotNil(t, s.CollateralRatio.After)
	assert.True(t, s.CollateralRatio.After.Infinite)
	assert.Equal(t, "∞", s.CollateralRatio.After.Display)
	assert.Equal(t, "3", s.MaxWithdrawable.After.Display)
	assert.Nil(t, s.CollateralRatio.Current)
}

func TestBuildDoesNotAlterMetrics(t *testing.T) {
	params := testParams()
	global := model.GlobalRiskParams{CurrentRedemptionPrice: ray("1")}
	after := risk.Assess(wad("1.23456789"), wad("300"), params, global)
	before := after.Collateral.String()

	Build(nil, &after, params, Options{AmountDecimals: 2})
	assert.Equal(t, before, after.Collateral.String())
}

func TestMaxWithdrawableIsSafetyBound(t *testing.T) {
	params := testParams()
	global := model.GlobalRiskParams{CurrentRedemptionPrice: ray("1")}
	current := risk.Assess(wad("10"), wad("5000"), params, global)

	s := Build(&current, nil, params, Options{})
	// safety price 1250: 5000 owed keeps 4 of the 10 locked
	assert.Equal(t, "6", s.MaxWithdrawable.Current.Display)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max_withdrawable"`)
	assert.NotContains(t, string(data), `"available_to_withdraw"`)
}

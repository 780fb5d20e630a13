package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultRisk/internal/fixedpoint"
)

const yamlSnapshot = `block: 19000000
account:
  wallet: "0x00000000000000000000000000000000000000a1"
  proxy: "0x00000000000000000000000000000000000000b2"
vault:
  id: "42"
  collateral: "5"
  debt: "2000"
collateralType:
  id: WETH
  liquidationCRatio: "1.25"
  safetyCRatio: "1.6"
  price: "2000"
  debtFloor: "100"
  stabilityFee: "1.035"
  accumulatedRate: "1.1"
global:
  redemptionPrice: "1"
balances:
  collateral: "10"
  debtToken: "500"
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	state, err := Load(writeFile(t, "snap.yaml", yamlSnapshot))
	require.NoError(t, err)

	assert.Equal(t, uint64(19000000), state.Block)
	assert.Equal(t, common.HexToAddress("0xa1"), state.Account.Wallet)
	assert.True(t, state.Account.HasProxy())

	require.NotNil(t, state.Vault)
	assert.Equal(t, "42", state.Vault.ID)
	assert.Equal(t, "WETH", state.Vault.CollateralTypeID)
	assert.Equal(t, "5", state.Vault.RawCollateral.String())
	assert.Equal(t, fixedpoint.Wad, state.Vault.RawDebt.Scale())

	p := state.Params
	assert.Equal(t, "1600", p.CurrentPrice.LiquidationPrice.String())
	assert.Equal(t, "1250", p.CurrentPrice.SafetyPrice.String())
	assert.Equal(t, fixedpoint.Ray, p.CurrentPrice.Value.Scale())
	assert.Equal(t, "100", p.DebtFloor.String())
	assert.True(t, p.PerVaultDebtCeiling.IsZero())
	assert.Equal(t, "1", p.LiquidationPenalty.String())

	assert.True(t, state.Global.GlobalDebtCeiling.IsZero())
	assert.Equal(t, "500", state.Balances.DebtToken.String())
}

func TestSaveLoadJSON(t *testing.T) {
	original, err := Load(writeFile(t, "snap.yml", yamlSnapshot))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "snap.json")
	require.NoError(t, Save(out, original))

	loaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, Encode(original), Encode(loaded))

	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExplicitPricesOverrideDerived(t *testing.T) {
	f, err := ReadFile(writeFile(t, "snap.yaml", yamlSnapshot))
	require.NoError(t, err)
	f.CollateralType.LiquidationPrice = "1500"

	state, err := f.Decode()
	require.NoError(t, err)
	assert.Equal(t, "1500", state.Params.CurrentPrice.LiquidationPrice.String())
	assert.Equal(t, "1250", state.Params.CurrentPrice.SafetyPrice.String())
}

func TestNewVaultSnapshot(t *testing.T) {
	f, err := ReadFile(writeFile(t, "snap.yaml", yamlSnapshot))
	require.NoError(t, err)
	f.Vault = nil

	state, err := f.Decode()
	require.NoError(t, err)
	assert.Nil(t, state.Vault)
}

func TestDecodeReportsEveryBadField(t *testing.T) {
	f := File{
		Account:        AccountFile{Wallet: "not-an-address"},
		CollateralType: CollateralFile{ID: "WETH", SafetyCRatio: "x"},
	}
	_, err := f.Decode()
	require.Error(t, err)
	for _, want := range []string{"account.wallet", "liquidationCRatio is required", "safetyCRatio", "price is required", "redemptionPrice is required"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.True(t, errors.Is(err, fixedpoint.ErrParse))
}

func TestDecodeRejectsInconsistentParams(t *testing.T) {
	f, err := ReadFile(writeFile(t, "snap.yaml", yamlSnapshot))
	require.NoError(t, err)
	f.CollateralType.SafetyCRatio = "1.1"

	_, err = f.Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety c-ratio")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "snap.toml", yamlSnapshot))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Save(filepath.Join(t.TempDir(), "snap.txt"), State{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

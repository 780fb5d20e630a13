package snapshot

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
)

// File is the on-disk form of a State. Amounts are decimal strings.
type File struct {
	ChainID        uint64         `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	Block          uint64         `json:"block" yaml:"block"`
	BlockTimestamp uint64         `json:"blockTimestamp,omitempty" yaml:"blockTimestamp,omitempty"`
	Account        AccountFile    `json:"account" yaml:"account"`
	Vault          *VaultFile     `json:"vault,omitempty" yaml:"vault,omitempty"`
	CollateralType CollateralFile `json:"collateralType" yaml:"collateralType"`
	Global         GlobalFile     `json:"global" yaml:"global"`
	Balances       BalancesFile   `json:"balances" yaml:"balances"`
}

type AccountFile struct {
	Wallet string `json:"wallet,omitempty" yaml:"wallet,omitempty"`
	Proxy  string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

type VaultFile struct {
	ID                      string `json:"id" yaml:"id"`
	Collateral              string `json:"collateral" yaml:"collateral"`
	Debt                    string `json:"debt" yaml:"debt"`
	IndexedCollateralRatio  string `json:"indexedCollateralRatio,omitempty" yaml:"indexedCollateralRatio,omitempty"`
	IndexedLiquidationPrice string `json:"indexedLiquidationPrice,omitempty" yaml:"indexedLiquidationPrice,omitempty"`
}

type CollateralFile struct {
	ID                string `json:"id" yaml:"id"`
	LiquidationCRatio string `json:"liquidationCRatio" yaml:"liquidationCRatio"`
	SafetyCRatio      string `json:"safetyCRatio" yaml:"safetyCRatio"`
	Price             string `json:"price" yaml:"price"`
	// LiquidationPrice and SafetyPrice are derived from Price when empty.
	LiquidationPrice   string `json:"liquidationPrice,omitempty" yaml:"liquidationPrice,omitempty"`
	SafetyPrice        string `json:"safetyPrice,omitempty" yaml:"safetyPrice,omitempty"`
	DebtFloor          string `json:"debtFloor,omitempty" yaml:"debtFloor,omitempty"`
	DebtCeiling        string `json:"debtCeiling,omitempty" yaml:"debtCeiling,omitempty"`
	StabilityFee       string `json:"stabilityFee,omitempty" yaml:"stabilityFee,omitempty"`
	LiquidationPenalty string `json:"liquidationPenalty,omitempty" yaml:"liquidationPenalty,omitempty"`
	AccumulatedRate    string `json:"accumulatedRate,omitempty" yaml:"accumulatedRate,omitempty"`
}

type GlobalFile struct {
	DebtCeiling     string `json:"debtCeiling,omitempty" yaml:"debtCeiling,omitempty"`
	Debt            string `json:"debt,omitempty" yaml:"debt,omitempty"`
	RedemptionPrice string `json:"redemptionPrice" yaml:"redemptionPrice"`
}

type BalancesFile struct {
	Collateral string `json:"collateral,omitempty" yaml:"collateral,omitempty"`
	DebtToken  string `json:"debtToken,omitempty" yaml:"debtToken,omitempty"`
}

// Decode converts a File into a State and validates the parameters.
func (f File) Decode() (State, error) {
	var d decoder
	state := State{
		ChainID:        f.ChainID,
		Block:          f.Block,
		BlockTimestamp: f.BlockTimestamp,
	}

	state.Account.Wallet = d.address("account.wallet", f.Account.Wallet)
	state.Account.Proxy = d.address("account.proxy", f.Account.Proxy)

	ct := f.CollateralType
	state.Params = model.CollateralTypeRiskParams{
		ID:                          ct.ID,
		LiquidationCRatio:           d.required("collateralType.liquidationCRatio", ct.LiquidationCRatio, fixedpoint.Ray),
		SafetyCRatio:                d.required("collateralType.safetyCRatio", ct.SafetyCRatio, fixedpoint.Ray),
		DebtFloor:                   d.optional("collateralType.debtFloor", ct.DebtFloor, fixedpoint.Wad, "0"),
		PerVaultDebtCeiling:         d.optional("collateralType.debtCeiling", ct.DebtCeiling, fixedpoint.Wad, "0"),
		TotalAnnualizedStabilityFee: d.optional("collateralType.stabilityFee", ct.StabilityFee, fixedpoint.Ray, "1"),
		LiquidationPenalty:          d.optional("collateralType.liquidationPenalty", ct.LiquidationPenalty, fixedpoint.Wad, "1"),
		AccumulatedRate:             d.optional("collateralType.accumulatedRate", ct.AccumulatedRate, fixedpoint.Ray, "1"),
	}
	state.Global = model.GlobalRiskParams{
		GlobalDebtCeiling:      d.optional("global.debtCeiling", f.Global.DebtCeiling, fixedpoint.Wad, "0"),
		GlobalDebt:             d.optional("global.debt", f.Global.Debt, fixedpoint.Wad, "0"),
		CurrentRedemptionPrice: d.required("global.redemptionPrice", f.Global.RedemptionPrice, fixedpoint.Ray),
	}
	oracle := d.required("collateralType.price", ct.Price, fixedpoint.Ray)

	state.Balances = model.WalletBalances{
		Collateral: d.optional("balances.collateral", f.Balances.Collateral, fixedpoint.Wad, "0"),
		DebtToken:  d.optional("balances.debtToken", f.Balances.DebtToken, fixedpoint.Wad, "0"),
	}

	if f.Vault != nil {
		state.Vault = &model.Vault{
			ID:               f.Vault.ID,
			CollateralTypeID: ct.ID,
			RawCollateral:    d.required("vault.collateral", f.Vault.Collateral, fixedpoint.Wad),
			RawDebt:          d.required("vault.debt", f.Vault.Debt, fixedpoint.Wad),
		}
		if f.Vault.IndexedCollateralRatio != "" || f.Vault.IndexedLiquidationPrice != "" {
			state.Vault.Indexed = &model.IndexedMetrics{
				CollateralRatio:  f.Vault.IndexedCollateralRatio,
				LiquidationPrice: f.Vault.IndexedLiquidationPrice,
			}
		}
	}

	if err := errors.Join(d.errs...); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := state.Global.Validate(); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if state.Params.LiquidationCRatio.IsZero() || state.Params.SafetyCRatio.IsZero() {
		return State{}, fmt.Errorf("decode snapshot: %s: c-ratios must be positive", ct.ID)
	}
	price := risk.DerivePrice(oracle, state.Global.CurrentRedemptionPrice, state.Params.LiquidationCRatio, state.Params.SafetyCRatio)
	if ct.LiquidationPrice != "" {
		price.LiquidationPrice = d.parse("collateralType.liquidationPrice", ct.LiquidationPrice, fixedpoint.Ray)
	}
	if ct.SafetyPrice != "" {
		price.SafetyPrice = d.parse("collateralType.safetyPrice", ct.SafetyPrice, fixedpoint.Ray)
	}
	if err := errors.Join(d.errs...); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	state.Params.CurrentPrice = price

	if err := state.Params.Validate(); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return state, nil
}

// Encode converts a State into its file form.
func Encode(s State) File {
	f := File{
		ChainID:        s.ChainID,
		Block:          s.Block,
		BlockTimestamp: s.BlockTimestamp,
		CollateralType: CollateralFile{
			ID:                 s.Params.ID,
			LiquidationCRatio:  s.Params.LiquidationCRatio.String(),
			SafetyCRatio:       s.Params.SafetyCRatio.String(),
			Price:              s.Params.CurrentPrice.Value.String(),
			LiquidationPrice:   s.Params.CurrentPrice.LiquidationPrice.String(),
			SafetyPrice:        s.Params.CurrentPrice.SafetyPrice.String(),
			DebtFloor:          s.Params.DebtFloor.String(),
			DebtCeiling:        s.Params.PerVaultDebtCeiling.String(),
			StabilityFee:       s.Params.TotalAnnualizedStabilityFee.String(),
			LiquidationPenalty: s.Params.LiquidationPenalty.String(),
			AccumulatedRate:    s.Params.AccumulatedRate.String(),
		},
		Global: GlobalFile{
			DebtCeiling:     s.Global.GlobalDebtCeiling.String(),
			Debt:            s.Global.GlobalDebt.String(),
			RedemptionPrice: s.Global.CurrentRedemptionPrice.String(),
		},
		Balances: BalancesFile{
			Collateral: s.Balances.Collateral.String(),
			DebtToken:  s.Balances.DebtToken.String(),
		},
	}
	if s.Account.HasWallet() {
		f.Account.Wallet = s.Account.Wallet.Hex()
	}
	if s.Account.HasProxy() {
		f.Account.Proxy = s.Account.Proxy.Hex()
	}
	if s.Vault != nil {
		f.Vault = &VaultFile{
			ID:         s.Vault.ID,
			Collateral: s.Vault.RawCollateral.String(),
			Debt:       s.Vault.RawDebt.String(),
		}
		if s.Vault.Indexed != nil {
			f.Vault.IndexedCollateralRatio = s.Vault.Indexed.CollateralRatio
			f.Vault.IndexedLiquidationPrice = s.Vault.Indexed.LiquidationPrice
		}
	}
	return f
}

// decoder collects field errors so a bad file reports all of them at once.
type decoder struct {
	errs []error
}

func (d *decoder) required(field, input string, scale fixedpoint.Scale) fixedpoint.Amount {
	if input == "" {
		d.errs = append(d.errs, fmt.Errorf("%s is required", field))
		return fixedpoint.Zero(scale)
	}
	return d.parse(field, input, scale)
}

func (d *decoder) optional(field, input string, scale fixedpoint.Scale, def string) fixedpoint.Amount {
	if input == "" {
		input = def
	}
	return d.parse(field, input, scale)
}

func (d *decoder) parse(field, input string, scale fixedpoint.Scale) fixedpoint.Amount {
	amount, err := fixedpoint.Parse(input, scale)
	if err != nil {
		d.errs = append(d.errs, fmt.Errorf("%s: %w", field, err))
		return fixedpoint.Zero(scale)
	}
	return amount
}

func (d *decoder) address(field, input string) common.Address {
	if input == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(input) {
		d.errs = append(d.errs, fmt.Errorf("%s: invalid address %q", field, input))
		return common.Address{}
	}
	return common.HexToAddress(input)
}

package protocol

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
	"vaultRisk/internal/snapshot"
)

// Caller performs eth_call. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contracts are the protocol deployment addresses. TaxCollector,
// LiquidationEngine, ProxyRegistry and CollateralJoin are optional.
type Contracts struct {
	SAFEEngine        common.Address
	OracleRelayer     common.Address
	TaxCollector      common.Address
	LiquidationEngine common.Address
	ProxyRegistry     common.Address
	CollateralJoin    common.Address
}

// Options configures RPC retries.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// Request selects the vault and wallet to read.
type Request struct {
	CollateralType string
	// SAFE is the vault's handler address; zero reads no vault.
	SAFE    common.Address
	VaultID string
	Owner   common.Address
	// Proxy overrides the ProxyRegistry lookup.
	Proxy           common.Address
	CollateralToken common.Address
	DebtToken       common.Address
	Block           uint64
}

// Reader assembles snapshot states from on-chain reads.
type Reader struct {
	caller    Caller
	contracts Contracts
	retry     retryPolicy
	cache     *ParamsCache
	decimals  *DecimalsCache
	logger    *zap.Logger
}

func NewReader(caller Caller, contracts Contracts, opts Options, logger *zap.Logger) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	if contracts.SAFEEngine == (common.Address{}) {
		return nil, fmt.Errorf("safe engine address is required")
	}
	if contracts.OracleRelayer == (common.Address{}) {
		return nil, fmt.Errorf("oracle relayer address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		caller:    caller,
		contracts: contracts,
		retry: retryPolicy{
			maxRetries: opts.MaxRetries,
			baseDelay:  opts.RetryBackoff,
			maxDelay:   10 * time.Second,
		},
		cache:    NewParamsCache(),
		decimals: NewDecimalsCache(),
		logger:   logger,
	}, nil
}

// Snapshot reads everything the engine needs at req.Block.
func (r *Reader) Snapshot(ctx context.Context, req Request) (snapshot.State, error) {
	cType, err := CollateralTypeHash(req.CollateralType)
	if err != nil {
		return snapshot.State{}, err
	}

	state := snapshot.State{Block: req.Block}

	if state.Global, err = r.GlobalParams(ctx, req.Block); err != nil {
		return snapshot.State{}, err
	}
	if state.Params, err = r.CollateralParams(ctx, req.CollateralType, req.Block); err != nil {
		return snapshot.State{}, err
	}

	if req.SAFE != (common.Address{}) {
		vault, err := r.Vault(ctx, cType, req.SAFE, req.Block)
		if err != nil {
			return snapshot.State{}, err
		}
		vault.ID = req.VaultID
		if vault.ID == "" {
			vault.ID = req.SAFE.Hex()
		}
		vault.CollateralTypeID = req.CollateralType
		state.Vault = &vault
	}

	state.Account.Wallet = req.Owner
	state.Account.Proxy = req.Proxy
	if req.Owner != (common.Address{}) && req.Proxy == (common.Address{}) && r.contracts.ProxyRegistry != (common.Address{}) {
		if state.Account.Proxy, err = r.ProxyOf(ctx, req.Owner, req.Block); err != nil {
			return snapshot.State{}, err
		}
	}

	if state.Balances, err = r.Balances(ctx, req); err != nil {
		return snapshot.State{}, err
	}

	r.logger.Info("snapshot read",
		zap.String("collateral_type", req.CollateralType),
		zap.Uint64("block", req.Block),
		zap.Bool("has_vault", state.Vault != nil),
		zap.Bool("has_proxy", state.Account.HasProxy()),
	)
	return state, nil
}

// GlobalParams reads the global debt, its ceiling and the redemption price.
func (r *Reader) GlobalParams(ctx context.Context, block uint64) (model.GlobalRiskParams, error) {
	values, err := r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "globalDebt", block)
	if err != nil {
		return model.GlobalRiskParams{}, err
	}
	globalDebt, err := asAmount(values[0], fixedpoint.Rad)
	if err != nil {
		return model.GlobalRiskParams{}, fmt.Errorf("globalDebt: %w", err)
	}

	values, err = r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "params", block)
	if err != nil {
		return model.GlobalRiskParams{}, err
	}
	globalCeiling, err := asAmount(values[1], fixedpoint.Rad)
	if err != nil {
		return model.GlobalRiskParams{}, fmt.Errorf("globalDebtCeiling: %w", err)
	}

	values, err = r.call(ctx, r.contracts.OracleRelayer, oracleRelayerABI, "calcRedemptionPrice", block)
	if err != nil {
		return model.GlobalRiskParams{}, err
	}
	redemption, err := asAmount(values[0], fixedpoint.Ray)
	if err != nil {
		return model.GlobalRiskParams{}, fmt.Errorf("redemptionPrice: %w", err)
	}

	return model.GlobalRiskParams{
		GlobalDebtCeiling:      globalCeiling.RoundDown(fixedpoint.Wad),
		GlobalDebt:             globalDebt.RoundUp(fixedpoint.Wad),
		CurrentRedemptionPrice: redemption,
	}, nil
}

// CollateralParams reads one collateral type's parameters, cached per block.
func (r *Reader) CollateralParams(ctx context.Context, name string, block uint64) (model.CollateralTypeRiskParams, error) {
	cType, err := CollateralTypeHash(name)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}
	if params, ok := r.cache.Get(cType, block); ok {
		return params, nil
	}

	values, err := r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "cData", block, cType)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}
	accRate, err := asAmount(values[2], fixedpoint.Ray)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("accumulatedRate: %w", err)
	}
	safetyPrice, err := asAmount(values[3], fixedpoint.Ray)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("safetyPrice: %w", err)
	}
	liqPrice, err := asAmount(values[4], fixedpoint.Ray)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("liquidationPrice: %w", err)
	}

	values, err = r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "cParams", block, cType)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}
	debtFloor, err := asAmount(values[1], fixedpoint.Rad)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("debtFloor: %w", err)
	}

	values, err = r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "params", block)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}
	vaultCeiling, err := asAmount(values[0], fixedpoint.Wad)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("safeDebtCeiling: %w", err)
	}
	// An uncapped ceiling is stored as uint256 max.
	if vaultCeiling.Raw().Cmp(maxUint256) == 0 {
		vaultCeiling = fixedpoint.Zero(fixedpoint.Wad)
	}

	values, err = r.call(ctx, r.contracts.OracleRelayer, oracleRelayerABI, "cParams", block, cType)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}
	oracle, err := asAddress(values[0])
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("oracle: %w", err)
	}
	safetyCRatio, err := asAmount(values[1], fixedpoint.Ray)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("safetyCRatio: %w", err)
	}
	liqCRatio, err := asAmount(values[2], fixedpoint.Ray)
	if err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("liquidationCRatio: %w", err)
	}

	oraclePrice, err := r.oraclePrice(ctx, oracle, block)
	if err != nil {
		return model.CollateralTypeRiskParams{}, err
	}

	fee := fixedpoint.FromInt(1, fixedpoint.Ray)
	if r.contracts.TaxCollector != (common.Address{}) {
		values, err = r.call(ctx, r.contracts.TaxCollector, taxCollectorABI, "cData", block, cType)
		if err != nil {
			return model.CollateralTypeRiskParams{}, err
		}
		perSecond, err := asAmount(values[0], fixedpoint.Ray)
		if err != nil {
			return model.CollateralTypeRiskParams{}, fmt.Errorf("stabilityFee: %w", err)
		}
		fee = risk.AnnualizeRate(perSecond)
	}

	penalty := fixedpoint.FromInt(1, fixedpoint.Wad)
	if r.contracts.LiquidationEngine != (common.Address{}) {
		values, err = r.call(ctx, r.contracts.LiquidationEngine, liquidationEngineABI, "cParams", block, cType)
		if err != nil {
			return model.CollateralTypeRiskParams{}, err
		}
		if penalty, err = asAmount(values[1], fixedpoint.Wad); err != nil {
			return model.CollateralTypeRiskParams{}, fmt.Errorf("liquidationPenalty: %w", err)
		}
	}

	params := model.CollateralTypeRiskParams{
		ID:                name,
		LiquidationCRatio: liqCRatio,
		SafetyCRatio:      safetyCRatio,
		CurrentPrice: model.Price{
			Value:            oraclePrice,
			LiquidationPrice: liqPrice,
			SafetyPrice:      safetyPrice,
		},
		DebtFloor:                   debtFloor.RoundUp(fixedpoint.Wad),
		PerVaultDebtCeiling:         vaultCeiling,
		TotalAnnualizedStabilityFee: fee,
		LiquidationPenalty:          penalty,
		AccumulatedRate:             accRate,
	}
	if err := params.Validate(); err != nil {
		return model.CollateralTypeRiskParams{}, fmt.Errorf("on-chain params: %w", err)
	}

	r.cache.Set(cType, block, params)
	return params, nil
}

func (r *Reader) oraclePrice(ctx context.Context, oracle common.Address, block uint64) (fixedpoint.Amount, error) {
	values, err := r.call(ctx, oracle, oracleABI, "getResultWithValidity", block)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	price, err := asAmount(values[0], fixedpoint.Wad)
	if err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("oracle price: %w", err)
	}
	valid, err := asBool(values[1])
	if err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("oracle validity: %w", err)
	}
	if !valid {
		r.logger.Warn("oracle price flagged invalid", zap.String("oracle", oracle.Hex()), zap.Uint64("block", block))
	}
	return price.Rescale(fixedpoint.Ray), nil
}

// Vault reads a SAFE's locked collateral and generated debt.
func (r *Reader) Vault(ctx context.Context, cType common.Hash, safe common.Address, block uint64) (model.Vault, error) {
	values, err := r.call(ctx, r.contracts.SAFEEngine, safeEngineABI, "safes", block, cType, safe)
	if err != nil {
		return model.Vault{}, err
	}
	collateral, err := asAmount(values[0], fixedpoint.Wad)
	if err != nil {
		return model.Vault{}, fmt.Errorf("lockedCollateral: %w", err)
	}
	debt, err := asAmount(values[1], fixedpoint.Wad)
	if err != nil {
		return model.Vault{}, fmt.Errorf("generatedDebt: %w", err)
	}
	return model.Vault{RawCollateral: collateral, RawDebt: debt}, nil
}

// ProxyOf returns the owner's registered proxy, zero when none.
func (r *Reader) ProxyOf(ctx context.Context, owner common.Address, block uint64) (common.Address, error) {
	values, err := r.call(ctx, r.contracts.ProxyRegistry, proxyRegistryABI, "proxies", block, owner)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

// Balances reads the owner's collateral and debt token balances as WAD.
// Without an owner both balances are zero.
func (r *Reader) Balances(ctx context.Context, req Request) (model.WalletBalances, error) {
	balances := model.WalletBalances{
		Collateral: fixedpoint.Zero(fixedpoint.Wad),
		DebtToken:  fixedpoint.Zero(fixedpoint.Wad),
	}
	if req.Owner == (common.Address{}) {
		return balances, nil
	}

	collateralToken := req.CollateralToken
	if collateralToken == (common.Address{}) && r.contracts.CollateralJoin != (common.Address{}) {
		values, err := r.call(ctx, r.contracts.CollateralJoin, collateralJoinABI, "collateral", req.Block)
		if err != nil {
			return model.WalletBalances{}, err
		}
		if collateralToken, err = asAddress(values[0]); err != nil {
			return model.WalletBalances{}, fmt.Errorf("join collateral: %w", err)
		}
	}

	var err error
	if collateralToken != (common.Address{}) {
		if balances.Collateral, err = r.tokenBalance(ctx, collateralToken, req.Owner, req.Block); err != nil {
			return model.WalletBalances{}, err
		}
	}
	if req.DebtToken != (common.Address{}) {
		if balances.DebtToken, err = r.tokenBalance(ctx, req.DebtToken, req.Owner, req.Block); err != nil {
			return model.WalletBalances{}, err
		}
	}
	return balances, nil
}

func (r *Reader) tokenDecimals(ctx context.Context, token common.Address, block uint64) (uint8, error) {
	if decimals, ok := r.decimals.Get(token); ok {
		return decimals, nil
	}
	values, err := r.call(ctx, token, erc20ABI, "decimals", block)
	if err != nil {
		return 0, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected type %T", values[0])
	}
	r.decimals.Set(token, decimals)
	return decimals, nil
}

func (r *Reader) tokenBalance(ctx context.Context, token, owner common.Address, block uint64) (fixedpoint.Amount, error) {
	decimals, err := r.tokenDecimals(ctx, token, block)
	if err != nil {
		return fixedpoint.Amount{}, err
	}

	values, err := r.call(ctx, token, erc20ABI, "balanceOf", block, owner)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	raw, err := asBigInt(values[0])
	if err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("balanceOf: %w", err)
	}
	balance, err := normalizeTokenAmount(raw, decimals)
	if err != nil {
		return fixedpoint.Amount{}, fmt.Errorf("balanceOf %s: %w", token.Hex(), err)
	}
	return balance, nil
}

func (r *Reader) call(ctx context.Context, contract common.Address, lazy *lazyABI, method string, block uint64, args ...interface{}) ([]interface{}, error) {
	contractABI, err := lazy.get()
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}

	var resp []byte
	err = r.retry.do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.caller.CallContract(ctx, msg, blockPtr)
		if callErr != nil {
			r.logger.Debug("contract call failed",
				zap.String("contract", contract.Hex()),
				zap.String("method", method),
				zap.Error(callErr),
			)
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, contract.Hex(), err)
	}

	values, err := unpack(contractABI, method, resp)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func unpack(contractABI abi.ABI, method string, resp []byte) ([]interface{}, error) {
	values, err := contractABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

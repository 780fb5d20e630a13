package protocol

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const safeEngineABIJSON = `[
  {"inputs": [{"name": "_cType", "type": "bytes32"}, {"name": "_safe", "type": "address"}], "name": "safes", "outputs": [{"name": "lockedCollateral", "type": "uint256"}, {"name": "generatedDebt", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_cType", "type": "bytes32"}], "name": "cData", "outputs": [{"name": "debtAmount", "type": "uint256"}, {"name": "lockedAmount", "type": "uint256"}, {"name": "accumulatedRate", "type": "uint256"}, {"name": "safetyPrice", "type": "uint256"}, {"name": "liquidationPrice", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_cType", "type": "bytes32"}], "name": "cParams", "outputs": [{"name": "debtCeiling", "type": "uint256"}, {"name": "debtFloor", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "globalDebt", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "params", "outputs": [{"name": "safeDebtCeiling", "type": "uint256"}, {"name": "globalDebtCeiling", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const oracleRelayerABIJSON = `[
  {"inputs": [], "name": "calcRedemptionPrice", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_cType", "type": "bytes32"}], "name": "cParams", "outputs": [{"name": "oracle", "type": "address"}, {"name": "safetyCRatio", "type": "uint256"}, {"name": "liquidationCRatio", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const oracleABIJSON = `[
  {"inputs": [], "name": "getResultWithValidity", "outputs": [{"name": "_result", "type": "uint256"}, {"name": "_validity", "type": "bool"}], "stateMutability": "view", "type": "function"}
]`

const taxCollectorABIJSON = `[
  {"inputs": [{"name": "_cType", "type": "bytes32"}], "name": "cData", "outputs": [{"name": "nextStabilityFee", "type": "uint256"}, {"name": "updateTime", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const liquidationEngineABIJSON = `[
  {"inputs": [{"name": "_cType", "type": "bytes32"}], "name": "cParams", "outputs": [{"name": "collateralAuctionHouse", "type": "address"}, {"name": "liquidationPenalty", "type": "uint256"}, {"name": "liquidationQuantity", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const proxyRegistryABIJSON = `[
  {"inputs": [{"name": "_owner", "type": "address"}], "name": "proxies", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const collateralJoinABIJSON = `[
  {"inputs": [], "name": "collateral", "outputs": [{"name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIJSON = `[
  {"inputs": [{"name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	json string
	once sync.Once
	abi  abi.ABI
	err  error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.abi, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.abi, l.err
}

var (
	safeEngineABI        = &lazyABI{json: safeEngineABIJSON}
	oracleRelayerABI     = &lazyABI{json: oracleRelayerABIJSON}
	oracleABI            = &lazyABI{json: oracleABIJSON}
	taxCollectorABI      = &lazyABI{json: taxCollectorABIJSON}
	liquidationEngineABI = &lazyABI{json: liquidationEngineABIJSON}
	proxyRegistryABI     = &lazyABI{json: proxyRegistryABIJSON}
	collateralJoinABI    = &lazyABI{json: collateralJoinABIJSON}
	erc20ABI             = &lazyABI{json: erc20ABIJSON}
)

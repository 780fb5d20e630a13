package protocol

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"vaultRisk/internal/model"
)

type paramsKey struct {
	cType common.Hash
	block uint64
}

// ParamsCache caches collateral-type params per block.
type ParamsCache struct {
	mu   sync.RWMutex
	data map[paramsKey]model.CollateralTypeRiskParams
}

func NewParamsCache() *ParamsCache {
	return &ParamsCache{data: make(map[paramsKey]model.CollateralTypeRiskParams)}
}

func (c *ParamsCache) Get(cType common.Hash, block uint64) (model.CollateralTypeRiskParams, bool) {
	c.mu.RLock()
	params, ok := c.data[paramsKey{cType: cType, block: block}]
	c.mu.RUnlock()
	return params, ok
}

func (c *ParamsCache) Set(cType common.Hash, block uint64, params model.CollateralTypeRiskParams) {
	c.mu.Lock()
	c.data[paramsKey{cType: cType, block: block}] = params
	c.mu.Unlock()
}

// DecimalsCache caches ERC20 decimals, which never change for a token.
type DecimalsCache struct {
	mu   sync.RWMutex
	data map[common.Address]uint8
}

func NewDecimalsCache() *DecimalsCache {
	return &DecimalsCache{data: make(map[common.Address]uint8)}
}

func (c *DecimalsCache) Get(token common.Address) (uint8, bool) {
	c.mu.RLock()
	decimals, ok := c.data[token]
	c.mu.RUnlock()
	return decimals, ok
}

func (c *DecimalsCache) Set(token common.Address, decimals uint8) {
	c.mu.Lock()
	c.data[token] = decimals
	c.mu.Unlock()
}

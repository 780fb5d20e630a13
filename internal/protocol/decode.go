package protocol

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultRisk/internal/fixedpoint"
)

// CollateralTypeHash encodes a collateral type name as a left-aligned bytes32.
func CollateralTypeHash(name string) (common.Hash, error) {
	if name == "" {
		return common.Hash{}, fmt.Errorf("collateral type is required")
	}
	if len(name) > common.HashLength {
		return common.Hash{}, fmt.Errorf("collateral type %q longer than 32 bytes", name)
	}
	var h common.Hash
	copy(h[:], name)
	return h, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unexpected integer type %T", value)
	}
}

func asAddress(value interface{}) (common.Address, error) {
	addr, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected address type %T", value)
	}
	return addr, nil
}

func asBool(value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected bool type %T", value)
	}
	return b, nil
}

func asAmount(value interface{}, scale fixedpoint.Scale) (fixedpoint.Amount, error) {
	raw, err := asBigInt(value)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	return fixedpoint.FromBig(raw, scale)
}

// normalizeTokenAmount converts a token balance with the given decimals to WAD,
// dropping digits beyond 18.
func normalizeTokenAmount(raw *big.Int, decimals uint8) (fixedpoint.Amount, error) {
	amount, err := fixedpoint.FromBig(raw, fixedpoint.Scale(decimals))
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if fixedpoint.Scale(decimals) > fixedpoint.Wad {
		return amount.RoundDown(fixedpoint.Wad), nil
	}
	return amount.Rescale(fixedpoint.Wad), nil
}

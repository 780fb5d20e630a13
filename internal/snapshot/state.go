package snapshot

import (
	"vaultRisk/internal/model"
)

// State is everything the engine reads for one vault at one block.
type State struct {
	ChainID        uint64
	Block          uint64
	BlockTimestamp uint64
	Account        model.Account
	// Vault is nil when the owner has no position yet.
	Vault    *model.Vault
	Params   model.CollateralTypeRiskParams
	Global   model.GlobalRiskParams
	Balances model.WalletBalances
}

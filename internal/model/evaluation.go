package model

import "time"

// EvaluationRecord is a flattened engine result for storage.
type EvaluationRecord struct {
	VaultID          string    `json:"vault_id"`
	CollateralType   string    `json:"collateral_type"`
	Block            uint64    `json:"block"`
	Action           string    `json:"action"`
	CollateralDelta  string    `json:"collateral_delta"`
	DebtDelta        string    `json:"debt_delta"`
	VerdictKind      string    `json:"verdict_kind"`
	VerdictMessage   string    `json:"verdict_message,omitempty"`
	CollateralAfter  *string   `json:"collateral_after,omitempty"`
	DebtAfter        *string   `json:"debt_after,omitempty"`
	RatioAfter       *string   `json:"ratio_after,omitempty"`
	LiquidationPrice *string   `json:"liquidation_price_after,omitempty"`
	StatusAfter      *string   `json:"status_after,omitempty"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}

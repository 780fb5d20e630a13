package storage

import "vaultRisk/internal/model"

// EvaluationSink receives evaluation records.
type EvaluationSink interface {
	PutEvaluationBatch(records []model.EvaluationRecord) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"vaultRisk/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS vault_evaluations (
	vault_id TEXT NOT NULL,
	collateral_type TEXT NOT NULL,
	block BIGINT NOT NULL,
	action TEXT NOT NULL,
	collateral_delta NUMERIC NOT NULL,
	debt_delta NUMERIC NOT NULL,
	verdict_kind TEXT NOT NULL,
	verdict_message TEXT NOT NULL DEFAULT '',
	collateral_after NUMERIC,
	debt_after NUMERIC,
	ratio_after TEXT,
	liquidation_price_after NUMERIC,
	status_after TEXT,
	evaluated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (vault_id, collateral_type, block, action, collateral_delta, debt_delta)
)`

// Store persists evaluation records in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the evaluation table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const upsertEvaluation = `
	INSERT INTO vault_evaluations (
		vault_id, collateral_type, block, action, collateral_delta, debt_delta,
		verdict_kind, verdict_message, collateral_after, debt_after, ratio_after,
		liquidation_price_after, status_after, evaluated_at, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
	ON CONFLICT (vault_id, collateral_type, block, action, collateral_delta, debt_delta)
	DO UPDATE SET
		verdict_kind = EXCLUDED.verdict_kind,
		verdict_message = EXCLUDED.verdict_message,
		collateral_after = EXCLUDED.collateral_after,
		debt_after = EXCLUDED.debt_after,
		ratio_after = EXCLUDED.ratio_after,
		liquidation_price_after = EXCLUDED.liquidation_price_after,
		status_after = EXCLUDED.status_after,
		evaluated_at = EXCLUDED.evaluated_at,
		updated_at = now()
`

// UpsertEvaluations inserts or updates evaluation records in one batch.
func (s *Store) UpsertEvaluations(ctx context.Context, records []model.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertEvaluation, evaluationArgs(rec)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert evaluation %d (vault %s): %w", i, records[i].VaultID, err)
		}
	}
	s.logger.Debug("evaluations upserted", zap.Int("count", len(records)))
	return nil
}

// PutEvaluationBatch lets the store act as a storage.EvaluationSink.
func (s *Store) PutEvaluationBatch(records []model.EvaluationRecord) error {
	return s.UpsertEvaluations(context.Background(), records)
}

func evaluationArgs(rec model.EvaluationRecord) []any {
	return []any{
		rec.VaultID,
		rec.CollateralType,
		int64(rec.Block),
		rec.Action,
		rec.CollateralDelta,
		rec.DebtDelta,
		rec.VerdictKind,
		rec.VerdictMessage,
		rec.CollateralAfter,
		rec.DebtAfter,
		rec.RatioAfter,
		rec.LiquidationPrice,
		rec.StatusAfter,
		rec.EvaluatedAt,
	}
}

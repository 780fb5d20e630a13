package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultRisk/internal/config"
	"vaultRisk/internal/engine"
	"vaultRisk/internal/model"
	"vaultRisk/internal/snapshot"
	"vaultRisk/internal/storage"
	"vaultRisk/internal/storage/postgres"
	"vaultRisk/internal/summary"
)

// evaluationOutput is what evaluate prints to stdout.
type evaluationOutput struct {
	Block          uint64        `json:"block"`
	CollateralType string        `json:"collateral_type"`
	VaultID        string        `json:"vault_id"`
	Action         string        `json:"action"`
	Result         engine.Result `json:"result"`
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEvaluate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	return evaluate(cmd.Context(), cfg, logger, cmd.OutOrStdout(), time.Now())
}

func evaluate(ctx context.Context, cfg config.EvaluateConfig, logger *zap.Logger, out io.Writer, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	state, err := snapshot.Load(cfg.Snapshot)
	if err != nil {
		return err
	}

	kind, err := model.ParseActionKind(cfg.Action)
	if err != nil {
		return err
	}
	intent, err := model.ParseIntent(kind, cfg.Collateral, cfg.Debt)
	if err != nil {
		return err
	}

	in := engine.Input{
		Account:  state.Account,
		Vault:    state.Vault,
		Params:   state.Params,
		Global:   state.Global,
		Balances: state.Balances,
		Intent:   intent,
		Pristine: cfg.Pristine,
	}
	eng := engine.New(logger, summary.Options{AmountDecimals: cfg.DisplayDecimals})
	result, err := eng.Evaluate(in)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	record := result.Record(in, state.Block, now)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(evaluationOutput{
		Block:          state.Block,
		CollateralType: state.Params.ID,
		VaultID:        record.VaultID,
		Action:         record.Action,
		Result:         result,
	}); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	records := []model.EvaluationRecord{record}
	if cfg.LogOut != "" {
		var sink storage.EvaluationSink = storage.NewJsonlStorage(cfg.LogOut)
		if err := sink.PutEvaluationBatch(records); err != nil {
			return err
		}
		logger.Info("evaluation logged", zap.String("path", cfg.LogOut))
	}
	if cfg.PgDSN != "" {
		if err := persist(ctx, cfg.PgDSN, records, logger); err != nil {
			return err
		}
	}

	logger.Info("evaluation done",
		zap.String("vault", record.VaultID),
		zap.String("action", record.Action),
		zap.String("verdict", record.VerdictKind),
	)
	return nil
}

func persist(ctx context.Context, dsn string, records []model.EvaluationRecord, logger *zap.Logger) error {
	store, err := postgres.NewStore(ctx, dsn, logger)
	if err != nil {
		return fmt.Errorf("connect postgres %s: %w", redactDSN(dsn), err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.UpsertEvaluations(ctx, records); err != nil {
		return err
	}
	logger.Info("evaluation stored", zap.String("pg", redactDSN(dsn)))
	return nil
}

// redactDSN hides the password of a URL or key=value DSN.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	fields := strings.Fields(dsn)
	for i, field := range fields {
		if strings.HasPrefix(field, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

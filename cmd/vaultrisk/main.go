package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vaultrisk",
		Short:        "Vault risk engine for over-collateralized stablecoin positions",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Read vault and protocol state from chain into a snapshot file",
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("rpc", "", "RPC URL")
	fetchCmd.Flags().String("safe-engine", "", "SAFEEngine address")
	fetchCmd.Flags().String("oracle-relayer", "", "OracleRelayer address")
	fetchCmd.Flags().String("tax-collector", "", "TaxCollector address (optional, stability fee)")
	fetchCmd.Flags().String("liquidation-engine", "", "LiquidationEngine address (optional, liquidation penalty)")
	fetchCmd.Flags().String("proxy-registry", "", "ProxyRegistry address (optional, proxy lookup)")
	fetchCmd.Flags().String("collateral-join", "", "collateral join address (optional, resolves the collateral token)")
	fetchCmd.Flags().String("collateral-type", "ETH-A", "collateral type name")
	fetchCmd.Flags().String("safe-handler", "", "SAFE handler address, empty for a new vault")
	fetchCmd.Flags().String("vault-id", "", "vault id recorded in the snapshot (defaults to the handler address)")
	fetchCmd.Flags().String("owner", "", "wallet address")
	fetchCmd.Flags().String("proxy", "", "proxy address, overrides the registry lookup")
	fetchCmd.Flags().String("collateral-token", "", "collateral ERC20 address")
	fetchCmd.Flags().String("debt-token", "", "debt ERC20 address")
	fetchCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	fetchCmd.Flags().String("out", "./data/snapshot.json", "snapshot output path (.json, .yaml)")
	fetchCmd.Flags().Int("max-retries", 5, "maximum retry attempts per RPC call")
	fetchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Validate and preview a vault action against a snapshot",
		RunE:  runEvaluate,
	}

	evaluateCmd.Flags().String("snapshot", "./data/snapshot.json", "snapshot path (.json, .yaml)")
	evaluateCmd.Flags().String("action", "deposit-borrow", "create, deposit-borrow, withdraw-repay, deposit-borrow-only, withdraw-repay-only")
	evaluateCmd.Flags().String("collateral", "", "collateral amount to deposit or withdraw")
	evaluateCmd.Flags().String("debt", "", "debt amount to borrow or repay")
	evaluateCmd.Flags().Bool("pristine", false, "treat the form as untouched")
	evaluateCmd.Flags().String("log-out", "", "append the evaluation to this JSONL file")
	evaluateCmd.Flags().String("pg-dsn", "", "store the evaluation in Postgres")
	evaluateCmd.Flags().Int32("display-decimals", 4, "fractional digits for amounts in the summary")
	evaluateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(evaluateCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stdout carries the evaluation JSON.
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

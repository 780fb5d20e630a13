package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultRisk/internal/chain"
	"vaultRisk/internal/config"
	"vaultRisk/internal/protocol"
	"vaultRisk/internal/snapshot"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	contracts, req, err := fetchTargets(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if req.Block, err = chainClient.ResolveBlock(ctx, cfg.Block); err != nil {
		return fmt.Errorf("resolve block: %w", err)
	}
	blockTime, err := chainClient.BlockTimestamp(ctx, req.Block)
	if err != nil {
		return fmt.Errorf("block timestamp: %w", err)
	}

	logger.Info("fetch start",
		zap.Uint64("chain_id", chainID),
		zap.Uint64("block", req.Block),
		zap.String("collateral_type", req.CollateralType),
		zap.String("safe", req.SAFE.Hex()),
		zap.String("out", cfg.Out),
	)

	reader, err := protocol.NewReader(chainClient, contracts, protocol.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}

	state, err := reader.Snapshot(ctx, req)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	state.ChainID = chainID
	state.BlockTimestamp = blockTime

	if err := snapshot.Save(cfg.Out, state); err != nil {
		return err
	}
	logger.Info("snapshot written", zap.String("out", cfg.Out), zap.Uint64("block", state.Block))
	return nil
}

func fetchTargets(cfg config.FetchConfig) (protocol.Contracts, protocol.Request, error) {
	p := addressParser{}
	contracts := protocol.Contracts{
		SAFEEngine:        p.parse("safe-engine", cfg.SAFEEngine),
		OracleRelayer:     p.parse("oracle-relayer", cfg.OracleRelayer),
		TaxCollector:      p.parse("tax-collector", cfg.TaxCollector),
		LiquidationEngine: p.parse("liquidation-engine", cfg.LiquidationEngine),
		ProxyRegistry:     p.parse("proxy-registry", cfg.ProxyRegistry),
		CollateralJoin:    p.parse("collateral-join", cfg.CollateralJoin),
	}
	req := protocol.Request{
		CollateralType:  cfg.CollateralType,
		SAFE:            p.parse("safe-handler", cfg.SAFEHandler),
		VaultID:         cfg.VaultID,
		Owner:           p.parse("owner", cfg.Owner),
		Proxy:           p.parse("proxy", cfg.Proxy),
		CollateralToken: p.parse("collateral-token", cfg.CollateralToken),
		DebtToken:       p.parse("debt-token", cfg.DebtToken),
		Block:           cfg.Block,
	}
	if err := errors.Join(p.errs...); err != nil {
		return protocol.Contracts{}, protocol.Request{}, err
	}
	return contracts, req, nil
}

type addressParser struct {
	errs []error
}

// parse accepts an empty input as the zero address.
func (p *addressParser) parse(name, input string) common.Address {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(input) {
		p.errs = append(p.errs, fmt.Errorf("invalid %s address: %s", name, input))
		return common.Address{}
	}
	return common.HexToAddress(input)
}

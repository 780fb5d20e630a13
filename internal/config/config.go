package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VAULTRISK_RPC.
const EnvPrefix = "VAULTRISK"

// FetchConfig holds configuration for the fetch command.
type FetchConfig struct {
	RPCURL            string
	SAFEEngine        string
	OracleRelayer     string
	TaxCollector      string
	LiquidationEngine string
	ProxyRegistry     string
	CollateralJoin    string
	CollateralType    string
	SAFEHandler       string
	VaultID           string
	Owner             string
	Proxy             string
	CollateralToken   string
	DebtToken         string
	Block             uint64
	Out               string
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// EvaluateConfig holds configuration for the evaluate command.
type EvaluateConfig struct {
	Snapshot        string
	Action          string
	Collateral      string
	Debt            string
	Pristine        bool
	LogOut          string
	PgDSN           string
	LogLevel        string
	DisplayDecimals int32
}

// LoadFetch merges config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"collateral-type": "ETH-A",
		"out":             "./data/snapshot.json",
		"max-retries":     5,
		"retry-backoff":   500 * time.Millisecond,
		"log-level":       "info",
	})
	if err != nil {
		return FetchConfig{}, err
	}

	cfg := FetchConfig{
		RPCURL:            v.GetString("rpc"),
		SAFEEngine:        v.GetString("safe-engine"),
		OracleRelayer:     v.GetString("oracle-relayer"),
		TaxCollector:      v.GetString("tax-collector"),
		LiquidationEngine: v.GetString("liquidation-engine"),
		ProxyRegistry:     v.GetString("proxy-registry"),
		CollateralJoin:    v.GetString("collateral-join"),
		CollateralType:    v.GetString("collateral-type"),
		SAFEHandler:       v.GetString("safe-handler"),
		VaultID:           v.GetString("vault-id"),
		Owner:             v.GetString("owner"),
		Proxy:             v.GetString("proxy"),
		CollateralToken:   v.GetString("collateral-token"),
		DebtToken:         v.GetString("debt-token"),
		Block:             v.GetUint64("block"),
		Out:               v.GetString("out"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	var errs []error
	if cfg.RPCURL == "" {
		errs = append(errs, errors.New("rpc url is required"))
	}
	if cfg.SAFEEngine == "" {
		errs = append(errs, errors.New("safe-engine address is required"))
	}
	if cfg.OracleRelayer == "" {
		errs = append(errs, errors.New("oracle-relayer address is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return FetchConfig{}, err
	}
	return cfg, nil
}

// LoadEvaluate merges config file, environment variables, and flags into EvaluateConfig.
func LoadEvaluate(cfgFile string, flags *pflag.FlagSet) (EvaluateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"snapshot":         "./data/snapshot.json",
		"action":           "deposit-borrow",
		"pristine":         false,
		"log-level":        "info",
		"display-decimals": 4,
	})
	if err != nil {
		return EvaluateConfig{}, err
	}

	cfg := EvaluateConfig{
		Snapshot:        v.GetString("snapshot"),
		Action:          v.GetString("action"),
		Collateral:      v.GetString("collateral"),
		Debt:            v.GetString("debt"),
		Pristine:        v.GetBool("pristine"),
		LogOut:          v.GetString("log-out"),
		PgDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
		DisplayDecimals: v.GetInt32("display-decimals"),
	}
	if cfg.Snapshot == "" {
		return EvaluateConfig{}, errors.New("snapshot path is required")
	}
	if cfg.DisplayDecimals < 0 {
		return EvaluateConfig{}, fmt.Errorf("display-decimals must not be negative, got %d", cfg.DisplayDecimals)
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

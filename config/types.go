package config

import (
	"fmt"

	"github.com/holiman/uint256"
)

// LedgerConfig holds the defaults the ledger applies to newly created accounts
type LedgerConfig struct {
	DefaultAmount       *uint256.Int `yaml:"-" ini:"-"`
	DefaultNonce        uint64       `yaml:"default_nonce" ini:"default_nonce"`
	DisplayAccountCount int          `yaml:"display_account_count" ini:"display_account_count"`
}

// ledgerConfigFile mirrors LedgerConfig with the amount as a decimal string,
// so large balances survive YAML/INI number parsing
type ledgerConfigFile struct {
	DefaultAmount       string `yaml:"default_amount" ini:"default_amount"`
	DefaultNonce        uint64 `yaml:"default_nonce" ini:"default_nonce"`
	DisplayAccountCount int    `yaml:"display_account_count" ini:"display_account_count"`
}

// ConfigFile is the top-level structure for ledger.yml
type ConfigFile struct {
	Ledger ledgerConfigFile `yaml:"ledger"`
}

func (f ledgerConfigFile) toLedgerConfig() (*LedgerConfig, error) {
	cfg := DefaultLedgerConfig()
	if f.DefaultAmount != "" {
		amount, err := uint256.FromDecimal(f.DefaultAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid default_amount %q: %w", f.DefaultAmount, err)
		}
		cfg.DefaultAmount = amount
	}
	cfg.DefaultNonce = f.DefaultNonce
	if f.DisplayAccountCount != 0 {
		cfg.DisplayAccountCount = f.DisplayAccountCount
	}
	return cfg, cfg.Validate()
}

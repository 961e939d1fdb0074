package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holiman/uint256"
	"github.com/mezonai/simledger/logx"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// DefaultLedgerConfig returns the configuration used when no file is given
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		DefaultAmount:       uint256.NewInt(DefaultAmount),
		DefaultNonce:        DefaultNonce,
		DisplayAccountCount: DefaultDisplayAccountCount,
	}
}

func (c *LedgerConfig) Validate() error {
	if c.DefaultAmount == nil {
		return fmt.Errorf("default amount must be set")
	}
	if c.DisplayAccountCount < 0 {
		return fmt.Errorf("display account count must not be negative, got %d", c.DisplayAccountCount)
	}
	return nil
}

// LoadLedgerConfig reads ledger defaults from a .yml/.yaml or .ini file
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return LoadLedgerConfigYAML(path)
	case ".ini":
		return LoadLedgerConfigINI(path)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", path)
	}
}

// LoadLedgerConfigYAML reads the `ledger:` block of a YAML file
func LoadLedgerConfigYAML(path string) (*LedgerConfig, error) {
	logx.Info("CONFIG", "LoadLedgerConfigYAML called with path: ", path)
	file, err := os.Open(path)
	if err != nil {
		logx.Error("CONFIG", "Failed to open file: ", err)
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "Failed to decode YAML: ", err)
		return nil, err
	}

	cfg, err := cfgFile.Ledger.toLedgerConfig()
	if err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded ledger config: defaultAmount=%s, defaultNonce=%d, displayAccountCount=%d",
		cfg.DefaultAmount.Dec(), cfg.DefaultNonce, cfg.DisplayAccountCount))
	return cfg, nil
}

// LoadLedgerConfigINI reads the [wallet] section of an .ini file
func LoadLedgerConfigINI(path string) (*LedgerConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	walletSection := cfg.Section(WalletSection)
	walletCfg := &ledgerConfigFile{}
	err = walletSection.MapTo(walletCfg)
	if err != nil {
		return nil, err
	}
	return walletCfg.toLedgerConfig()
}

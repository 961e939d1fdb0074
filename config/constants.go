package config

const (
	DefaultAmount              = 100000
	DefaultNonce               = 0
	DefaultDisplayAccountCount = 10

	// section read from .ini files
	WalletSection = "wallet"
)

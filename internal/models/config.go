package models

import "time"

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig
	Store       StoreConfig
	Formance    FormanceConfig
	Platform    PlatformConfig
	Distributor DistributorConfig
	Funding     FundingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// StoreConfig selects the ledger backend: "sqlite", "memory" or "formance"
type StoreConfig struct {
	Backend string
}

// FormanceConfig holds Formance Stack connection settings
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// PlatformConfig holds platform-wide settings used by the CLIs
type PlatformConfig struct {
	ReserveAsset    string
	Decimals        int32
	Authority       string
	Oracle          string
	DailyRewardPool uint64
	EntitiesFile    string
}

// DistributorConfig holds reward distribution scheduling settings
type DistributorConfig struct {
	Schedule    string
	MetricsAddr string
	RunOnStart  bool
}

// FundingConfig holds reward pool funding poller settings
type FundingConfig struct {
	LookbackWindow  time.Duration
	PollingInterval time.Duration
	CleanupInterval time.Duration
	PortfolioName   string
	WalletSymbol    string
	WalletType      string
}

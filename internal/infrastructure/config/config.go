package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server Server `mapstructure:"server"`
	Auth   Auth   `mapstructure:"auth"`
	Chain  Chain  `mapstructure:"chain"`
}

// Server configuration
type Server struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"logLevel"`
}

// Auth configuration for signed requests
type Auth struct {
	HMACSecret         string        `mapstructure:"hmacSecret"`
	TimestampTolerance time.Duration `mapstructure:"timestampTolerance"`
}

// Chain describes the simulated chain the service runs against.
// Addresses are 0x-prefixed hex; amounts are in whole units of the asset.
type Chain struct {
	Native         Asset        `mapstructure:"native"`
	WrappedNative  string       `mapstructure:"wrappedNative"`
	AcceptedAsset  string       `mapstructure:"acceptedAsset"`
	LedgerAddress  string       `mapstructure:"ledgerAddress"`
	GatewayAddress string       `mapstructure:"gatewayAddress"`
	RouterAddress  string       `mapstructure:"routerAddress"`
	RouterFeeBps   uint64       `mapstructure:"routerFeeBps"`
	Tokens         []Asset      `mapstructure:"tokens"`
	Genesis        []Allocation `mapstructure:"genesis"`
	Pools          []Pool       `mapstructure:"pools"`
}

// Asset configuration
type Asset struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Allocation credits an account at startup
type Allocation struct {
	Account string `mapstructure:"account"`
	Asset   string `mapstructure:"asset"`
	Amount  string `mapstructure:"amount"`
}

// Pool seeds router liquidity
type Pool struct {
	AssetA   string `mapstructure:"assetA"`
	AssetB   string `mapstructure:"assetB"`
	ReserveA string `mapstructure:"reserveA"`
	ReserveB string `mapstructure:"reserveB"`
}

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	v := viper.New()

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env config file: %w", err)
		}
	}

	v.SetEnvPrefix("CUSTODIAN")
	v.AutomaticEnv()

	// Bind environment variables
	_ = v.BindEnv("server.port", "CUSTODIAN_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.logLevel", "CUSTODIAN_SERVER_LOG_LEVEL")
	_ = v.BindEnv("auth.hmacSecret", "CUSTODIAN_AUTH_HMAC_SECRET", "HMAC_SECRET")
	_ = v.BindEnv("auth.timestampTolerance", "CUSTODIAN_AUTH_TIMESTAMP_TOLERANCE")
	_ = v.BindEnv("chain.acceptedAsset", "CUSTODIAN_CHAIN_ACCEPTED_ASSET")
	_ = v.BindEnv("chain.routerFeeBps", "CUSTODIAN_CHAIN_ROUTER_FEE_BPS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Auth.HMACSecret == "" {
		cfg.Auth.HMACSecret = "default-secret-key-change-in-production"
	}
	if cfg.Auth.TimestampTolerance == 0 {
		cfg.Auth.TimestampTolerance = 5 * time.Minute
	}
	if cfg.Chain.RouterFeeBps == 0 {
		cfg.Chain.RouterFeeBps = 30
	}
	if cfg.Chain.Native.Decimals == 0 {
		cfg.Chain.Native.Decimals = 18
	}

	return &cfg, nil
}

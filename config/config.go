package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// EVMNetwork configures one EVM chain for wallet submission and balance
// watching.
type EVMNetwork struct {
	ChainID    int64  `mapstructure:"chain_id"`
	RPCUrl     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`
}

// SolanaConfig configures the Solana signing path.
type SolanaConfig struct {
	RPCUrl     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`
}

// Config holds the application configuration
type Config struct {
	BaseURL        string
	Env            string
	PollInterval   time.Duration
	RecipientsFile string
	EVMNetworks    map[string]EVMNetwork
	Solana         SolanaConfig
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".anyspend")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://mainnet.anyspend.com")
	viper.SetDefault("env", "dev")
	viper.SetDefault("poll_interval", "3s")

	// Read from environment variables
	viper.SetEnvPrefix("ANYSPEND")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	pollInterval, err := time.ParseDuration(viper.GetString("poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid poll_interval: %w", err)
	}

	cfg := &Config{
		BaseURL:        viper.GetString("base_url"),
		Env:            viper.GetString("env"),
		PollInterval:   pollInterval,
		RecipientsFile: viper.GetString("recipients_file"),
		Solana: SolanaConfig{
			RPCUrl:     viper.GetString("solana.rpc_url"),
			PrivateKey: viper.GetString("solana.private_key"),
		},
	}

	if err := viper.UnmarshalKey("evm_networks", &cfg.EVMNetworks); err != nil {
		return nil, fmt.Errorf("invalid evm_networks config: %w", err)
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

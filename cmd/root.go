package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/b3dotfun/anyspend-go/config"
	"github.com/b3dotfun/anyspend-go/pkg/api"
	"github.com/b3dotfun/anyspend-go/pkg/watcher"
)

var rootCmd = &cobra.Command{
	Use:   "anyspend",
	Short: "A CLI for paying with crypto through the AnySpend order engine",
	Long: `anyspend drives the AnySpend payment engine from the command line:
quote a trade, create an order, pay it from a configured wallet and watch
the settlement until it executes.

Examples:
  anyspend swap 100 USDC to ETH --from-chain 8453 --to-chain 1 --recipient 0x123...
  anyspend status <order-id> --watch
  anyspend tokens --chain 8453
  anyspend history 0x123...`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

// newAPIClient builds the backend client, attaching wallet-signature auth
// when a signing key is configured.
func newAPIClient(cfg *config.Config, log zerolog.Logger) (*api.Client, error) {
	opts := []api.Option{api.WithLogger(log)}
	for _, network := range cfg.EVMNetworks {
		if network.PrivateKey == "" {
			continue
		}
		signer, err := watcher.NewEVMSigner(network.PrivateKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithSigner(signer, 0))
		break
	}
	return api.NewClient(cfg.BaseURL, opts...)
}

// newLogger builds the console logger shared by all commands.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

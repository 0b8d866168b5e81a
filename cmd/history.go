package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/b3dotfun/anyspend-go/config"
	"github.com/b3dotfun/anyspend-go/pkg/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "List past orders for an address",
	Long: `List orders created by an address, newest first.

Examples:
  anyspend history 0x123...
  anyspend history 0x123... --limit 50`,
	Args: cobra.ExactArgs(1),
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of orders to fetch")
}

func runHistory(cmd *cobra.Command, args []string) {
	address := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := config.Get()

	apiClient, err := newAPIClient(cfg, newLogger(verbose))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching order history..."
		s.Start()
	}

	orders, err := apiClient.GetOrderHistory(context.Background(), address, historyLimit)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(orders, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayHistory(address, orders)
	}
}

func displayHistory(address string, orders []types.Order) {
	if len(orders) == 0 {
		fmt.Printf("\nNo orders found for %s.\n\n", address)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            ORDER HISTORY")
	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("\n  Address: %s\n\n", color.CyanString(address))

	for _, o := range orders {
		fmt.Printf("  %s  %-16s  %-10s  chain %d -> %d  %s\n",
			o.CreatedAt.Format("2006-01-02 15:04"),
			coloredStatus(o.Status),
			o.Type,
			o.SrcChain,
			o.DstChain,
			color.HiBlackString(o.ID))
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d orders\n\n", len(orders))
}

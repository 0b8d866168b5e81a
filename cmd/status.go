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
	"github.com/b3dotfun/anyspend-go/pkg/api"
	"github.com/b3dotfun/anyspend-go/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:     "status <order-id>",
	Aliases: []string{"order"},
	Short:   "Check the status of an order",
	Long: `Check the settlement status of an order by its id.

Examples:
  anyspend status 7f8a9b0c
  anyspend status 7f8a9b0c --watch
  anyspend status 7f8a9b0c --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the order settles")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	orderID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := config.Get()

	apiClient, err := newAPIClient(cfg, newLogger(verbose))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if watchStatus {
		watchOrderStatus(apiClient, orderID, jsonOutput)
	} else {
		checkOrderStatus(apiClient, orderID, jsonOutput)
	}
}

func checkOrderStatus(apiClient *api.Client, orderID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking order status..."
		s.Start()
	}

	order, err := apiClient.GetOrder(context.Background(), orderID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(order, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayOrder(order)
	}
}

func watchOrderStatus(apiClient *api.Client, orderID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching order %s\n", color.CyanString(orderID))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayOrder(apiClient, orderID) {
		return
	}

	for range ticker.C {
		if checkAndDisplayOrder(apiClient, orderID) {
			return
		}
	}
}

// checkAndDisplayOrder fetches and prints the order; returns true once the
// order reaches a terminal status.
func checkAndDisplayOrder(apiClient *api.Client, orderID string) bool {
	order, err := apiClient.GetOrder(context.Background(), orderID)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayOrder(order)
	return order.Order.Status.IsTerminal()
}

func displayOrder(o *types.OrderAndTransactions) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        ORDER STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Order ID:        %s\n", color.CyanString(o.Order.ID))
	fmt.Printf("  Type:            %s\n", o.Order.Type)
	fmt.Printf("  Status:          %s\n", coloredStatus(o.Order.Status))
	fmt.Printf("  Source:          chain %d, %s\n", o.Order.SrcChain, formatOrderAmount(o.Order.SrcAmount))
	fmt.Printf("  Destination:     chain %d -> %s\n", o.Order.DstChain, color.HiBlackString(o.Order.RecipientAddress))
	if o.Order.GlobalAddress != "" {
		fmt.Printf("  Deposit Address: %s\n", color.CyanString(o.Order.GlobalAddress))
	}
	fmt.Printf("  Created:         %s\n", o.Order.CreatedAt.Format("2006-01-02 15:04:05"))

	for _, tx := range o.DepositTxs {
		fmt.Printf("  Deposit Tx:      %s (%s)\n", color.HiBlackString(tx.TxHash), tx.Status)
	}
	for _, tx := range o.RelayTxs {
		fmt.Printf("  Relay Tx:        %s (%s)\n", color.HiBlackString(tx.TxHash), tx.Status)
	}
	if o.ExecuteTx != nil {
		fmt.Printf("  Execute Tx:      %s (%s)\n", color.HiBlackString(o.ExecuteTx.TxHash), o.ExecuteTx.Status)
	}
	for _, tx := range o.RefundTxs {
		fmt.Printf("  Refund Tx:       %s (%s)\n", color.HiBlackString(tx.TxHash), tx.Status)
	}

	if o.Order.Settlement != nil && o.Order.Settlement.ActualDstAmount != "" {
		fmt.Printf("  Received:        %s\n", formatOrderAmount(o.Order.Settlement.ActualDstAmount))
	}
	if o.Order.ErrorDetail != "" {
		fmt.Printf("  Error:           %s\n", color.RedString(o.Order.ErrorDetail))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

// formatOrderAmount prints a raw smallest-unit amount. The order payload does
// not carry token decimals, so no scaling is applied.
func formatOrderAmount(amount string) string {
	if amount == "" {
		return "-"
	}
	return amount + " (base units)"
}

func coloredStatus(status types.OrderStatus) string {
	label := strings.ToUpper(string(status))

	switch {
	case status == types.OrderStatusExecuted:
		return color.GreenString(label)
	case status == types.OrderStatusFailure || status == types.OrderStatusExpired:
		return color.RedString(label)
	case status == types.OrderStatusRefunding || status == types.OrderStatusRefunded:
		return color.MagentaString(label)
	case status.IsWaitingForPayment():
		return color.YellowString(label)
	default:
		return color.CyanString(label)
	}
}

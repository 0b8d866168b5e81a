package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/b3dotfun/anyspend-go/config"
	"github.com/b3dotfun/anyspend-go/pkg/api"
)

var startInquiry bool

var kycCmd = &cobra.Command{
	Use:   "kyc <address>",
	Short: "Check identity verification for an address",
	Long: `Check whether an address is verified for fiat onramp orders, and
optionally open a new hosted verification session.

Examples:
  anyspend kyc 0x123...
  anyspend kyc 0x123... --start`,
	Args: cobra.ExactArgs(1),
	Run:  runKYC,
}

func init() {
	rootCmd.AddCommand(kycCmd)

	kycCmd.Flags().BoolVar(&startInquiry, "start", false, "Open a verification session if not yet approved")
}

func runKYC(cmd *cobra.Command, args []string) {
	address := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	ctx := context.Background()

	cfg := config.Get()

	apiClient, err := newAPIClient(cfg, newLogger(verbose))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	status, err := apiClient.GetKYCStatus(ctx, address)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if status != api.KYCStatusApproved && startInquiry {
		inquiry, err := apiClient.CreateKYCInquiry(ctx, address)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		if jsonOutput {
			jsonData, _ := json.MarshalIndent(inquiry, "", "  ")
			fmt.Println(string(jsonData))
			return
		}
		fmt.Printf("\nVerification session created (%s).\n", inquiry.InquiryID)
		if inquiry.SessionURL != "" {
			fmt.Println("Complete verification at:")
			color.Cyan("  %s\n", inquiry.SessionURL)
		}
		return
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]string{"address": address, "status": string(status)}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  Address: %s\n  KYC:     %s\n\n", color.CyanString(address), coloredKYCStatus(status))
}

func coloredKYCStatus(status api.KYCStatus) string {
	switch status {
	case api.KYCStatusApproved:
		return color.GreenString(string(status))
	case api.KYCStatusPending:
		return color.YellowString(string(status))
	case api.KYCStatusDeclined:
		return color.RedString(string(status))
	default:
		return string(status)
	}
}

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/b3dotfun/anyspend-go/config"
	"github.com/b3dotfun/anyspend-go/pkg/api"
	"github.com/b3dotfun/anyspend-go/pkg/lifecycle"
	"github.com/b3dotfun/anyspend-go/pkg/payment"
	"github.com/b3dotfun/anyspend-go/pkg/quote"
	"github.com/b3dotfun/anyspend-go/pkg/types"
	"github.com/b3dotfun/anyspend-go/pkg/watcher"
)

var (
	fromChainID   int64
	toChainID     int64
	recipientAddr string
	exactOutput   bool
	manualPay     bool
	noConfirm     bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Swap tokens through an AnySpend order",
	Long: `Quote a trade, create an order and pay it from a configured wallet.

With --transfer the order is created deposit-first: you get a deposit
address to send funds to manually instead of an automatic wallet payment.

Examples:
  anyspend swap 100 USDC to ETH --from-chain 8453 --to-chain 1 --recipient 0x123...
  anyspend swap 0.25 ETH to USDC --from-chain 1 --to-chain 8453 --recipient 0x123... --exact-output
  anyspend swap 50 USDC to B3 --from-chain 8453 --to-chain 8333 --recipient 0x123... --transfer`,
	Args: cobra.ExactArgs(4),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().Int64Var(&fromChainID, "from-chain", int64(types.ChainBase), "Source chain id")
	swapCmd.Flags().Int64Var(&toChainID, "to-chain", int64(types.ChainBase), "Destination chain id")
	swapCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address (where you'll receive tokens)")
	swapCmd.Flags().BoolVar(&exactOutput, "exact-output", false, "Treat the amount as the amount to receive")
	swapCmd.Flags().BoolVar(&manualPay, "transfer", false, "Pay by manual transfer to a deposit address")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	if !strings.EqualFold(args[2], "to") {
		printError(fmt.Errorf("usage: anyspend swap <amount> <source-token> to <dest-token>"))
		os.Exit(1)
	}
	amountArg, srcSymbol, dstSymbol := args[0], args[1], args[3]

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	log := newLogger(verbose)
	ctx := context.Background()

	cfg := config.Get()

	apiClient, err := newAPIClient(cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching tokens..."
		s.Start()
	}

	srcToken, err := apiClient.FindToken(ctx, types.ChainID(fromChainID), srcSymbol)
	if err != nil {
		s.Stop()
		printError(err)
		os.Exit(1)
	}
	dstToken, err := apiClient.FindToken(ctx, types.ChainID(toChainID), dstSymbol)
	if err != nil {
		s.Stop()
		printError(err)
		os.Exit(1)
	}

	if err := runSwapFlow(ctx, cfg, apiClient, log, s, *srcToken, *dstToken, amountArg, jsonOutput); err != nil {
		s.Stop()
		printError(err)
		os.Exit(1)
	}
}

func runSwapFlow(ctx context.Context, cfg *config.Config, apiClient *api.Client, log zerolog.Logger, s *spinner.Spinner, srcToken, dstToken types.Token, amountArg string, jsonOutput bool) error {
	direction := types.ExactInput
	drivingToken := srcToken
	if exactOutput {
		direction = types.ExactOutput
		drivingToken = dstToken
	}

	amount, err := quote.ParseUnits(amountArg, drivingToken.Decimals)
	if err != nil {
		return err
	}

	if !jsonOutput {
		s.Suffix = " Fetching quote..."
	}
	q, err := apiClient.GetQuote(ctx, types.QuoteRequest{
		Direction: direction,
		SrcChain:  srcToken.ChainID,
		DstChain:  dstToken.ChainID,
		SrcToken:  srcToken,
		DstToken:  dstToken,
		Amount:    amount,
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		return err
	}

	recipient, store, err := resolveRecipient(cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return runSwapJSON(ctx, cfg, apiClient, log, q, recipient)
	}

	displayQuote(q)

	if !noConfirm && !confirm("Proceed with swap?") {
		fmt.Println("\nSwap cancelled.")
		return nil
	}

	orderID, err := driveOrder(ctx, cfg, apiClient, log, q, recipient)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Add(recipient); err != nil {
			log.Debug().Err(err).Msg("failed to record recipient")
		}
	}

	fmt.Println("\nYou can check the order later using:")
	color.Cyan("  anyspend status %s --watch\n", orderID)
	return nil
}

func runSwapJSON(ctx context.Context, cfg *config.Config, apiClient *api.Client, log zerolog.Logger, q *types.Quote, recipient string) error {
	orderID, err := driveOrder(ctx, cfg, apiClient, log, q, recipient)
	if err != nil {
		return err
	}
	out := map[string]any{
		"order_id":   orderID,
		"src_amount": q.SrcAmount,
		"dst_amount": q.DstAmount,
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
	return nil
}

// resolveRecipient applies the precedence chain: the --recipient flag wins,
// then the stored recents seed a default.
func resolveRecipient(cfg *config.Config) (string, payment.RecipientStore, error) {
	resolver := payment.NewRecipientResolver()
	resolver.SetExplicit(recipientAddr)

	store, err := payment.NewFileStore(cfg.RecipientsFile)
	if err != nil {
		return "", nil, err
	}
	recents, err := store.Recents()
	if err == nil {
		resolver.SeedFromRecents(recents)
	}

	recipient := resolver.Effective()
	if recipient == "" {
		return "", nil, lifecycle.ErrMissingRecipient
	}
	return recipient, store, nil
}

// driveOrder creates the order and runs the lifecycle until a terminal
// stage, printing progress along the way.
func driveOrder(ctx context.Context, cfg *config.Config, apiClient *api.Client, log zerolog.Logger, q *types.Quote, recipient string) (string, error) {
	router, err := buildRouter(cfg, log)
	if err != nil {
		return "", err
	}

	selector := payment.NewSelector()
	if manualPay {
		selector.Select(types.PaymentMethodTransferCrypto)
	} else {
		selector.Suggest(walletAvailability(cfg, q.SrcChain), payment.BalanceSufficient)
	}
	if selector.Effective() == types.PaymentMethodNone {
		selector.Select(types.PaymentMethodTransferCrypto)
	}

	updates := make(chan lifecycle.Snapshot, 16)
	machine := lifecycle.NewMachine(apiClient, router, selector,
		lifecycle.WithLogger(log),
		lifecycle.WithPollInterval(cfg.PollInterval),
		lifecycle.WithOnUpdate(func(snap lifecycle.Snapshot) {
			select {
			case updates <- snap:
			default:
			}
		}),
		lifecycle.WithOnError(func(err error) {
			color.Red("\nPayment failed: %v", err)
			color.Yellow("The order stays open; it is not paid again unless you say so.")
		}),
	)
	machine.SetReady(true)

	params := lifecycle.CreateParams{
		Type:      types.OrderTypeSwap,
		Quote:     q,
		Recipient: recipient,
	}

	var orderID string
	if selector.Effective() == types.PaymentMethodTransferCrypto {
		orderID, err = machine.CreateDepositFirst(ctx, params)
	} else {
		orderID, err = machine.Create(ctx, params)
	}
	if err != nil {
		return "", err
	}

	if snap := machine.Snapshot(); snap.Order != nil && snap.Order.Order.GlobalAddress != "" &&
		selector.Effective() == types.PaymentMethodTransferCrypto {
		depositAddress := snap.Order.Order.GlobalAddress
		displayDepositInstructions(depositAddress, q)

		// Watch the deposit address locally too; the balance diff usually
		// shows up before the backend scan confirms the deposit.
		if sub := watchDeposit(ctx, cfg, log, q, depositAddress); sub != nil {
			defer sub.Dispose()
		}
	}

	watchUpdates(ctx, machine, updates)
	return orderID, nil
}

// watchDeposit starts a local balance watch on the deposit address when an
// RPC endpoint for the source chain is configured. Returns nil otherwise.
func watchDeposit(ctx context.Context, cfg *config.Config, log zerolog.Logger, q *types.Quote, depositAddress string) *watcher.Subscription {
	var rpcURL string
	for _, network := range cfg.EVMNetworks {
		if types.ChainID(network.ChainID) == q.SrcChain && network.RPCUrl != "" {
			rpcURL = network.RPCUrl
			break
		}
	}
	if rpcURL == "" {
		return nil
	}

	reader, err := watcher.NewEVMBalanceReader()
	if err != nil {
		log.Debug().Err(err).Msg("deposit watch unavailable")
		return nil
	}
	if err := reader.AddNetwork(q.SrcChain, rpcURL); err != nil {
		log.Debug().Err(err).Msg("deposit watch unavailable")
		return nil
	}

	dw := watcher.NewDepositWatcher(reader, 0, log)
	return dw.Watch(ctx, q.SrcChain, q.SrcToken.Address, depositAddress, func(received *big.Int) {
		if amount, err := quote.DisplayAmount(received.String(), q.SrcToken.Decimals); err == nil {
			color.Green("Deposit seen on-chain: %s %s (waiting for confirmation)", amount, q.SrcToken.Symbol)
		}
	})
}

// watchUpdates prints stage changes until the order reaches a terminal
// stage or the context ends. A failed wallet payment is only retried with
// the user's say-so.
func watchUpdates(ctx context.Context, machine *lifecycle.Machine, updates chan lifecycle.Snapshot) {
	lastStage := lifecycle.StageIdle
	retryOffered := false
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			if snap.PaymentFailed && !retryOffered {
				retryOffered = true
				if confirm("Retry the wallet payment?") {
					retryOffered = false
					machine.RetryPayment(ctx)
					continue
				}
				color.Yellow("Send the deposit manually to complete the order.")
			}
			if snap.Stage == lastStage {
				continue
			}
			lastStage = snap.Stage
			printStage(snap)
			if snap.Stage.IsTerminal() {
				return
			}
		}
	}
}

func printStage(snap lifecycle.Snapshot) {
	switch snap.Stage {
	case lifecycle.StageAwaitingPayment:
		if snap.TopUpAvailable && snap.Deficit != nil {
			color.Yellow("Partial deposit received; %s still needed", snap.Deficit)
		} else {
			fmt.Println("Awaiting wallet payment...")
		}
	case lifecycle.StageAwaitingDeposit:
		fmt.Println("Waiting for your deposit to arrive...")
	case lifecycle.StageProcessing:
		fmt.Println("Deposit received, processing...")
	case lifecycle.StageExecuted:
		color.Green("\n✓ Order executed!")
		if snap.Order != nil && snap.Order.Order.Settlement != nil {
			fmt.Printf("  Received: %s\n", snap.Order.Order.Settlement.ActualDstAmount)
		}
	case lifecycle.StageExpired:
		color.Red("\nOrder expired before funds arrived.")
	case lifecycle.StageRefunding:
		color.Yellow("Refund in progress...")
	case lifecycle.StageRefunded:
		color.Yellow("\nOrder refunded.")
	case lifecycle.StageFailed:
		color.Red("\nOrder failed.")
		if snap.Order != nil && snap.Order.Order.ErrorDetail != "" {
			fmt.Printf("  %s\n", snap.Order.Order.ErrorDetail)
		}
	}
}

// buildRouter wires a submitter for every configured network.
func buildRouter(cfg *config.Config, log zerolog.Logger) (*watcher.Router, error) {
	router := watcher.NewRouter()

	for name, network := range cfg.EVMNetworks {
		if network.RPCUrl == "" || network.PrivateKey == "" {
			continue
		}
		sub, err := watcher.NewEVMSubmitter(types.ChainID(network.ChainID), network.RPCUrl, network.PrivateKey, log)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", name, err)
		}
		router.Register(types.ChainID(network.ChainID), sub)
	}

	if cfg.Solana.RPCUrl != "" && cfg.Solana.PrivateKey != "" {
		sub, err := watcher.NewSolanaSubmitter(cfg.Solana.RPCUrl, cfg.Solana.PrivateKey, log)
		if err != nil {
			return nil, fmt.Errorf("solana: %w", err)
		}
		router.Register(types.ChainSolana, sub)
	}

	return router, nil
}

// walletAvailability reports which wallet kinds the config provides for a
// chain.
func walletAvailability(cfg *config.Config, chain types.ChainID) payment.WalletAvailability {
	if chain.IsSolana() {
		return payment.WalletAvailability{
			HasConnectedWallet: cfg.Solana.RPCUrl != "" && cfg.Solana.PrivateKey != "",
		}
	}
	for _, network := range cfg.EVMNetworks {
		if types.ChainID(network.ChainID) == chain && network.RPCUrl != "" && network.PrivateKey != "" {
			return payment.WalletAvailability{HasConnectedWallet: true}
		}
	}
	return payment.WalletAvailability{}
}

func displayQuote(q *types.Quote) {
	srcAmount, _ := quote.DisplayAmount(q.SrcAmount, q.SrcToken.Decimals)
	dstAmount, _ := quote.DisplayAmount(q.DstAmount, q.DstToken.Decimals)

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:           %s %s (chain %d)\n", srcAmount, color.YellowString(q.SrcToken.Symbol), q.SrcChain)
	fmt.Printf("  To:             ~%s %s (chain %d)\n", dstAmount, color.YellowString(q.DstToken.Symbol), q.DstChain)
	fmt.Printf("  Value:          $%s -> $%s\n", q.SrcAmountUSD.StringFixed(2), q.DstAmountUSD.StringFixed(2))

	if impact := quote.DisplayPriceImpact(q.SrcAmountUSD, q.DstAmountUSD); impact.Sign() > 0 {
		fmt.Printf("  Price Impact:   %s%%\n", color.RedString(impact.StringFixed(2)))
	}
	if q.FeeBps > 0 {
		fmt.Printf("  Fee:            %s bps\n", strconv.Itoa(int(q.FeeBps)))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func displayDepositInstructions(depositAddress string, q *types.Quote) {
	srcAmount, _ := quote.DisplayAmount(q.SrcAmount, q.SrcToken.Decimals)

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                 DEPOSIT INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nTo complete the order, send %s %s to:\n\n", srcAmount, q.SrcToken.Symbol)
	color.Cyan("  %s\n", depositAddress)
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/legendiguess/coinbase-dca-bot/domain"
	"github.com/legendiguess/coinbase-dca-bot/handlers"
	"github.com/legendiguess/coinbase-dca-bot/services"
	"github.com/legendiguess/coinbase-dca-bot/storage"
)

const usageText = `usage: dca-bot [options] <market> <BUY|SELL> <amount> <amount-currency>

ex:
    BTC-USD BUY 14 USD          (buy $14 worth of BTC)
    BTC-USD BUY 0.00125 BTC     (buy 0.00125 BTC)
    ETH-BTC SELL 0.00125 BTC    (sell 0.00125 BTC worth of ETH)
    ETH-BTC SELL 0.1 ETH        (sell 0.1 ETH)

options:
`

func main() {
	logger := log.New()
	logger.SetLevel(log.DebugLevel)

	sandbox := flag.Bool("sandbox", false, "run against the sandbox venue, skips the confirmation prompt")
	warnAfter := flag.Int("warn_after", 300, "secs to wait before sending an alert that an order isn't done")
	jobMode := flag.Bool("job", false, "suppresses the confirmation prompt")
	configFile := flag.String("config", "settings.yaml", "config file location")
	secretsFile := flag.String("secrets", "", "Google service account key file, overrides the config")
	listen := flag.String("listen", "", "serve the HTTP order endpoint on this address instead of placing one order")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := storage.LoadConfig(*configFile)
	if err != nil {
		logger.Fatalf("read settings: %v", err)
	}

	credentials := storage.NewCredentials(config, *sandbox)
	if *secretsFile != "" {
		credentials.SetGoogleSheetSecret(*secretsFile)
	}
	if err := credentials.Validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	exchange := services.NewExchange(credentials)
	workflow := services.NewWorkflow(exchange, buildNotifier(credentials, logger), buildLedger(credentials, logger), logger)

	if *listen != "" {
		server := handlers.NewServer(workflow, time.Duration(*warnAfter)*time.Second, credentials.EnvironmentName(), logger)
		logger.Printf("Listening on %s", *listen)
		logger.Fatal(server.Listen(*listen))
	}

	args := flag.Args()
	if len(args) != 4 {
		flag.Usage()
		os.Exit(2)
	}

	side, err := domain.ParseOrderSide(args[1])
	if err != nil {
		logger.Fatalf("%v", err)
	}

	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		logger.Fatalf("invalid amount %q: %v", args[2], err)
	}

	if !*sandbox && !*jobMode && !confirmProduction() {
		logger.Printf("Exiting without submitting purchase.")
		return
	}

	logger.Printf("STARTED: %s %s %s %s", args[0], side, amount, args[3])

	outcome, err := workflow.Execute(services.OrderParams{
		Market:         args[0],
		Side:           side,
		Amount:         amount,
		AmountCurrency: args[3],
		WarnAfter:      time.Duration(*warnAfter) * time.Second,
		Environment:    credentials.EnvironmentName(),
	})
	if err != nil {
		logger.Fatalf("%v", err)
	}

	switch outcome.Kind {
	case services.OutcomeSettled, services.OutcomeTimedOut:
	default:
		os.Exit(1)
	}
}

func confirmProduction() bool {
	fmt.Print("Production purchase! Confirm [Y]: ")
	response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(response) == "Y"
}

func buildNotifier(credentials *storage.Credentials, logger *log.Logger) services.Notifier {
	if credentials.GetTelegramBotAPIToken() == "" {
		return services.NoopNotifier{}
	}

	notifier, err := services.NewTelegramNotifier(credentials)
	if err != nil {
		logger.Warnf("telegram notifier unavailable, continuing without: %v", err)
		return services.NoopNotifier{}
	}
	return notifier
}

func buildLedger(credentials *storage.Credentials, logger *log.Logger) services.Ledger {
	if credentials.GetGoogleSheetID() == "" {
		return services.NoopLedger{}
	}

	ledger, err := services.NewSheetsLedger(credentials.GetGoogleSheetSecret(), credentials.GetGoogleSheetID())
	if err != nil {
		logger.Warnf("sheets ledger unavailable, continuing without: %v", err)
		return services.NoopLedger{}
	}
	return ledger
}

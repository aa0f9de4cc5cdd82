// bitsoBuyer/main.go
// Reads Bitso balances, reports the local currency and places the configured
// market buys one after another.
// Credentials come from API_KEY / API_SECRET (environment or .env).

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bitsoBuyer/config"
	"bitsoBuyer/exchange"
	"bitsoBuyer/exchange/httpClient"
	"bitsoBuyer/strategy"
	"bitsoBuyer/util"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "optional YAML config file")
	envPath := flag.String("env", config.DefaultEnvPath, "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sign, err := httpClient.NewSign(cfg.Credentials)
	if err != nil {
		return err
	}
	rest := httpClient.NewClient(cfg.APIURL, sign,
		httpClient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		httpClient.WithLogger(logger.Named("bitso")),
	)
	client := exchange.NewBitsoClient(rest, cfg.OriginIDs)

	logger.Info("starting run",
		zap.String("url", cfg.APIURL),
		zap.String("currency", cfg.Strategy.LocalCurrency),
		zap.Int("orders", len(cfg.Strategy.Orders)),
	)
	strat := strategy.NewStrategy(cfg.Strategy, client, os.Stdout, logger.Named("strategy"))
	_, err = strat.Run(ctx)
	return err
}

package strategy

import (
	"context"
	"fmt"
	"io"

	"bitsoBuyer/exchange"

	"go.uber.org/zap"
)

// Order is one market buy: spend Minor of the book's quote currency.
type Order struct {
	Label string `mapstructure:"label"` // e.g. "usd", prefixes the report line
	Book  string `mapstructure:"book"`  // e.g. "usd_mxn"
	Minor string `mapstructure:"minor"` // quote currency amount, kept as text
}

type Config struct {
	LocalCurrency string  // balance reported before ordering
	Orders        []Order // placed in this order, one at a time
}

func DefaultConfig() Config {
	return Config{
		LocalCurrency: "mxn",
		Orders: []Order{
			{Label: "usd", Book: "usd_mxn", Minor: "500"},
			{Label: "btc", Book: "btc_mxn", Minor: "100"},
		},
	}
}

type Outcome struct {
	Order  Order
	Result exchange.OrderResult
}

type Report struct {
	Balance  exchange.Balance
	Outcomes []Outcome
}

type Strategy struct {
	cfg    Config
	ex     exchange.ExchangeClient
	out    io.Writer
	logger *zap.Logger
}

func NewStrategy(cfg Config, ex exchange.ExchangeClient, out io.Writer, logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{cfg: cfg, ex: ex, out: out, logger: logger}
}

// Run reads balances, reports the local currency and places every configured
// order. A rejected order is reported and the next one is still placed; any
// other error ends the run.
func (s *Strategy) Run(ctx context.Context) (*Report, error) {
	balances, err := s.ex.Balances(ctx)
	if err != nil {
		return nil, err
	}
	local, err := exchange.FindBalance(balances, s.cfg.LocalCurrency)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.cfg.LocalCurrency, err)
	}
	fmt.Fprintf(s.out, "%s: %s\n", s.cfg.LocalCurrency, local.Available)

	report := &Report{Balance: local}
	for _, o := range s.cfg.Orders {
		res, err := s.ex.PlaceMarketBuy(ctx, o.Book, o.Minor)
		if err != nil {
			return report, fmt.Errorf("%s order on %s: %w", o.Label, o.Book, err)
		}
		report.Outcomes = append(report.Outcomes, Outcome{Order: o, Result: res})
		s.print(o, res)
	}
	return report, nil
}

func (s *Strategy) print(o Order, res exchange.OrderResult) {
	if res.Accepted() {
		s.logger.Info("order placed", zap.String("book", o.Book), zap.String("minor", o.Minor), zap.String("oid", res.OID))
		fmt.Fprintf(s.out, "%s-oid: %s\n", o.Label, res.OID)
		return
	}
	s.logger.Warn("order rejected", zap.String("book", o.Book), zap.String("minor", o.Minor), zap.Error(res.Err))
	fmt.Fprintf(s.out, "%s-oid error: %s\n", o.Label, res.Err)
}

package strategy

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"bitsoBuyer/exchange"
	"bitsoBuyer/exchange/exchangetest"
	"bitsoBuyer/exchange/httpClient"
)

var testCreds = httpClient.Credentials{Key: "test-key", Secret: "test-secret"}

const mxnBalances = `{"success":true,"payload":{"balances":[
	{"currency":"btc","total":"0.00000000","locked":"0.00000000","available":"0.00000000"},
	{"currency":"mxn","total":"1000.00","locked":"50.00","available":"950.00"}
]}}`

func newRun(t *testing.T) (*exchangetest.Server, *bytes.Buffer, *Strategy) {
	t.Helper()
	srv := exchangetest.NewServer(testCreds)
	t.Cleanup(srv.Close)
	sign, err := httpClient.NewSign(testCreds)
	if err != nil {
		t.Fatalf("new sign: %v", err)
	}
	client := exchange.NewBitsoClient(httpClient.NewClient(srv.URL, sign), false)
	var out bytes.Buffer
	return srv, &out, NewStrategy(DefaultConfig(), client, &out, nil)
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestRunBothOrdersAccepted(t *testing.T) {
	srv, out, s := newRun(t)
	srv.SetBalances(mxnBalances)
	srv.SetOrderResponse("usd_mxn", `{"success":true,"payload":{"oid":"abc123"}}`)
	srv.SetOrderResponse("btc_mxn", `{"success":true,"payload":{"oid":"def456"}}`)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"mxn: 950.00", "usd-oid: abc123", "btc-oid: def456"}
	got := lines(out)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	if len(report.Outcomes) != 2 || !report.Outcomes[0].Result.Accepted() || !report.Outcomes[1].Result.Accepted() {
		t.Fatalf("unexpected report %+v", report)
	}

	orders := srv.Orders()
	if len(orders) != 2 || orders[0].Book != "usd_mxn" || orders[1].Book != "btc_mxn" {
		t.Fatalf("orders sent out of order: %+v", orders)
	}
	if orders[0].Minor != "500" || orders[1].Minor != "100" {
		t.Fatalf("unexpected amounts: %+v", orders)
	}
}

func TestRunRejectedOrderDoesNotStopNext(t *testing.T) {
	srv, out, s := newRun(t)
	srv.SetBalances(mxnBalances)
	srv.SetOrderResponse("usd_mxn", `{"success":false,"error":{"code":"0201","message":"insufficient funds"}}`)
	srv.SetOrderResponse("btc_mxn", `{"success":true,"payload":{"oid":"def456"}}`)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := lines(out)
	if len(got) != 3 || got[1] != "usd-oid error: 0201:insufficient funds" || got[2] != "btc-oid: def456" {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	orders := srv.Orders()
	if len(orders) != 2 || orders[1].Book != "btc_mxn" {
		t.Fatalf("btc order was not attempted: %+v", orders)
	}
}

func TestRunMissingLocalBalance(t *testing.T) {
	srv, out, s := newRun(t)
	srv.SetBalances(`{"success":true,"payload":{"balances":[
		{"currency":"btc","total":"0.5","locked":"0","available":"0.5"},
		{"currency":"mxn","total":"0.00","locked":"0","available":"0.00"}
	]}}`)

	_, err := s.Run(context.Background())
	if !errors.Is(err, exchange.ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
	if len(srv.Orders()) != 0 {
		t.Fatalf("no order may be placed without a local balance")
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunMissingOIDReported(t *testing.T) {
	srv, out, s := newRun(t)
	srv.SetBalances(mxnBalances)
	srv.SetOrderResponse("usd_mxn", `{"success":true}`)
	srv.SetOrderResponse("btc_mxn", `{"success":true,"payload":{"oid":"def456"}}`)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := lines(out)
	if got[1] != "usd-oid error: "+exchange.ErrMissingOrderID.Error() {
		t.Fatalf("unexpected line %q", got[1])
	}
}

type failingExchange struct {
	balances []exchange.Balance
	placed   []string
}

func (f *failingExchange) Balances(ctx context.Context) ([]exchange.Balance, error) {
	return f.balances, nil
}

func (f *failingExchange) PlaceMarketBuy(ctx context.Context, book, minor string) (exchange.OrderResult, error) {
	f.placed = append(f.placed, book)
	return exchange.OrderResult{}, errors.New("connection refused")
}

func TestRunTransportErrorIsFatal(t *testing.T) {
	avail, _ := exchange.ParseAmount("10")
	ex := &failingExchange{balances: []exchange.Balance{{Currency: "mxn", Total: avail, Available: avail}}}
	var out bytes.Buffer

	_, err := NewStrategy(DefaultConfig(), ex, &out, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(ex.placed) != 1 {
		t.Fatalf("expected run to stop after first failure, placed %v", ex.placed)
	}
}

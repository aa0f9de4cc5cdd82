package exchange

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrBalanceNotFound = errors.New("balance not found")
	ErrMissingOrderID  = errors.New("order accepted without oid")
	ErrRejected        = errors.New("request rejected")
)

type Balance struct {
	Currency  string `json:"currency"`
	Total     Amount `json:"total"`
	Locked    Amount `json:"locked"`
	Available Amount `json:"available"`
}

// OrderResult is either an accepted order (OID set) or a rejection (Err set).
type OrderResult struct {
	OID string
	Err error
}

func (r OrderResult) Accepted() bool { return r.Err == nil }

type ExchangeClient interface {
	Balances(ctx context.Context) ([]Balance, error)
	PlaceMarketBuy(ctx context.Context, book string, minor string) (OrderResult, error)
}

// FilterNonZero keeps entries whose total is above zero, in their original order.
func FilterNonZero(balances []Balance) []Balance {
	out := make([]Balance, 0, len(balances))
	for _, b := range balances {
		if b.Total.IsPositive() {
			out = append(out, b)
		}
	}
	return out
}

func FindBalance(balances []Balance, currency string) (Balance, error) {
	for _, b := range balances {
		if strings.EqualFold(b.Currency, currency) {
			return b, nil
		}
	}
	return Balance{}, ErrBalanceNotFound
}

package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitsoBuyer/exchange/httpClient"

	"github.com/google/uuid"
)

type BitsoClient struct {
	rest      *httpClient.Client
	originIDs bool
}

// NewBitsoClient wraps a signed REST client. With originIDs set, every order
// carries a generated origin_id.
func NewBitsoClient(rest *httpClient.Client, originIDs bool) *BitsoClient {
	return &BitsoClient{rest: rest, originIDs: originIDs}
}

func (m *BitsoClient) Balances(ctx context.Context) ([]Balance, error) {
	res, err := m.rest.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("fetch balances: %w", rejection(res))
	}
	var payload balancesPayload
	if err := res.Decode(&payload); err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}
	return FilterNonZero(payload.Balances), nil
}

// PlaceMarketBuy spends minor units of the book's quote currency. Exchange
// rejections come back in the result; only transport and decoding failures
// are returned as errors.
func (m *BitsoClient) PlaceMarketBuy(ctx context.Context, book, minor string) (OrderResult, error) {
	amount, err := ParseAmount(minor)
	if err != nil {
		return OrderResult{}, err
	}
	if !amount.IsPositive() {
		return OrderResult{}, fmt.Errorf("%w %q: must be positive", ErrInvalidAmount, minor)
	}

	req := httpClient.NewMarketBuy(book, amount.String())
	if m.originIDs {
		req.OriginID = newOriginID()
	}
	res, err := m.rest.Order(ctx, req)
	if err != nil {
		return OrderResult{}, err
	}
	if !res.Success {
		return OrderResult{Err: rejection(res)}, nil
	}

	var payload orderPayload
	if err := res.Decode(&payload); err != nil && !errors.Is(err, httpClient.ErrEmptyPayload) {
		return OrderResult{}, fmt.Errorf("place order on %s: %w", book, err)
	}
	if payload.OID == "" {
		return OrderResult{Err: ErrMissingOrderID}, nil
	}
	return OrderResult{OID: payload.OID}, nil
}

func rejection(res *httpClient.Response) error {
	if res.Error != nil {
		return res.Error
	}
	return ErrRejected
}

// origin_id only allows alphanumerics and a few separators, so the dashes go.
func newOriginID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

package exchange

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a decimal as the exchange wrote it. The raw text is kept for
// display so "950.00" is never printed as "950".
type Amount struct {
	raw   string
	value decimal.Decimal
}

func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	return Amount{raw: s, value: d}, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a Amount) IsPositive() bool { return a.value.IsPositive() }

func (a Amount) String() string {
	if a.raw != "" {
		return a.raw
	}
	return a.value.String()
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	// a blank field reads as zero, so it is filtered like an empty balance
	if strings.TrimSpace(s) == "" {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

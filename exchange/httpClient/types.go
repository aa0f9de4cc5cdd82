package httpClient

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Response is the envelope every private Bitso endpoint answers with.
// Payload is set when Success is true, Error when it is false.
type Response struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

// Decode unmarshals the payload into v.
func (r *Response) Decode(v any) error {
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// APIError is an application-level rejection returned with success=false.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ":" + e.Message
}

// UnmarshalJSON accepts the code as either a JSON string or a number.
func (e *APIError) UnmarshalJSON(b []byte) error {
	var raw struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var code string
	if err := json.Unmarshal(raw.Code, &code); err != nil {
		code = strings.TrimSpace(string(raw.Code))
	}
	if code == "null" {
		code = ""
	}
	e.Code = code
	e.Message = raw.Message
	return nil
}

// OrderRequest is the body of POST /api/v3/orders/. Minor is the quote
// currency amount to spend on a market buy.
type OrderRequest struct {
	Book     string `json:"book"`
	Minor    string `json:"minor"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	OriginID string `json:"origin_id,omitempty"`
}

func NewMarketBuy(book, minor string) OrderRequest {
	return OrderRequest{
		Book:  book,
		Minor: minor,
		Side:  SIDE_BUY,
		Type:  ORDER_TYPE_MARKET,
	}
}

package exchange

// Payload shapes of the private endpoints.

type balancesPayload struct {
	Balances []Balance `json:"balances"`
}

type orderPayload struct {
	OID string `json:"oid"`
}

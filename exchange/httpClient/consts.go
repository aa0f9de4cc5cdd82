package httpClient

const (
	DefaultBaseURL = "https://bitso.com"

	BalancePath = "/api/v3/balance/"
	OrdersPath  = "/api/v3/orders/"

	AUTH_SCHEME = "Bitso"

	SIDE_BUY = "buy"

	ORDER_TYPE_MARKET = "market"
)

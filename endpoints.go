package trading

const (
	PriceEndpoint            = "/price"
	MidpointEndpoint         = "/midpoint"
	OrderBookEndpoint        = "/book"
	TickSizeEndpoint         = "/tick-size"
	PostOrderEndpoint        = "/order"
	BalanceAllowanceEndpoint = "/balance-allowance"
	DeriveApiKeyEndpoint     = "/auth/derive-api-key"
	CreateApiKeyEndpoint     = "/auth/api-key"
)

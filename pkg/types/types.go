package types

// Side of an order relative to the outcome token.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType selects the CLOB time-in-force.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC"
	OrderTypeFOK OrderType = "FOK"
	OrderTypeGTD OrderType = "GTD"
	OrderTypeFAK OrderType = "FAK"
)

type AssetType string

const (
	AssetTypeCollateral  AssetType = "COLLATERAL"
	AssetTypeConditional AssetType = "CONDITIONAL"
)

const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ApiCreds are the L2 credentials returned by the CLOB auth endpoints.
type ApiCreds struct {
	ApiKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// SignedOrderPayload is the wire form of a signed order as the CLOB expects
// it on POST /order.
type SignedOrderPayload struct {
	Salt          int64  `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

// PostOrderRequest is the top-level order placement payload. Owner is the API
// key UUID, not the maker address.
type PostOrderRequest struct {
	Order     SignedOrderPayload `json:"order"`
	Owner     string             `json:"owner"`
	OrderType string             `json:"orderType"`
}

type OrderResponse struct {
	Success     bool     `json:"success"`
	ErrorMsg    string   `json:"errorMsg"`
	OrderID     string   `json:"orderId"`
	OrderHashes []string `json:"orderHashes"`
	Status      string   `json:"status"`
}

type PriceResponse struct {
	Price string `json:"price"`
}

type MidpointResponse struct {
	Mid string `json:"mid"`
}

type TickSizeResponse struct {
	MinimumTickSize float64 `json:"minimum_tick_size"`
}

type BalanceAllowanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}

type OrderSummary struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type OrderBook struct {
	Market    string         `json:"market"`
	AssetID   string         `json:"asset_id"`
	Timestamp string         `json:"timestamp"`
	Hash      string         `json:"hash"`
	Bids      []OrderSummary `json:"bids"`
	Asks      []OrderSummary `json:"asks"`
}

// ContractConfig carries the per-chain contract addresses the SDK depends on.
type ContractConfig struct {
	// Exchange contracts the CLOB settles against.
	Exchange        string
	NegRiskExchange string

	// Conditional Token Framework and its collateral token.
	ConditionalTokens string
	Collateral        string

	// Factories proxy wallet addresses are derived from.
	SafeFactory  string
	ProxyFactory string
}

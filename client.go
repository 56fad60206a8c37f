package trading

import (
	"context"
	"math/big"
	"net/http"
	"strconv"

	"github.com/polymarket/go-order-utils/pkg/builder"
	"github.com/polymarket/go-order-utils/pkg/model"

	"github.com/GoPolymarket/go-trading-client/pkg/signer"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

// TradingClient talks to the Polymarket CLOB. Market data endpoints work
// without credentials; order placement needs a signer and API credentials,
// which can be derived with CreateOrDeriveApiKey.
type TradingClient struct {
	clobURL        string
	chainID        int64
	contractConfig types.ContractConfig
	httpClient     *HTTPClient
	rawHTTP        *http.Client
	signer         signer.Signer
	creds          *types.ApiCreds

	// funder is the maker address for smart-contract wallets. Empty means
	// the signer's EOA is the maker.
	funder        string
	signatureType model.SignatureType

	orderBuilder builder.ExchangeOrderBuilder
}

// NewTradingClient creates a client for a supported chain. The signer and
// creds may be nil for read-only market data access.
func NewTradingClient(clobURL string, chainID int64, s signer.Signer, creds *types.ApiCreds) (*TradingClient, error) {
	if clobURL == "" {
		clobURL = DefaultClobURL
	}
	config, err := GetContractConfig(chainID)
	if err != nil {
		return nil, err
	}

	c := &TradingClient{
		clobURL:        clobURL,
		chainID:        chainID,
		contractConfig: config,
		httpClient:     NewHTTPClient(nil),
		signer:         s,
		creds:          creds,
		signatureType:  model.EOA,
	}
	if s != nil {
		c.orderBuilder = builder.NewExchangeOrderBuilderImpl(big.NewInt(chainID), nil)
	}
	return c, nil
}

// SetHTTPClient replaces the underlying transport, mainly for tests.
func (c *TradingClient) SetHTTPClient(client *http.Client) {
	c.httpClient = NewHTTPClient(client)
	c.rawHTTP = client
}

func (c *TradingClient) SetApiCreds(creds *types.ApiCreds) {
	c.creds = creds
}

// SetFunder routes order maker fields through a smart-contract wallet.
func (c *TradingClient) SetFunder(funder string, signatureType model.SignatureType) {
	c.funder = funder
	c.signatureType = signatureType
}

func (c *TradingClient) ContractConfig() types.ContractConfig {
	return c.contractConfig
}

// DetectSignatureType derives the signer's proxy wallet and probes it for
// code. A deployed proxy switches the client to Safe signing with the proxy
// as funder; otherwise the EOA trades directly.
func (c *TradingClient) DetectSignatureType(ctx context.Context, rpcURL string, probe ChainProbe) error {
	if c.signer == nil {
		return types.ErrSignerUnavailable
	}
	proxy, err := deriveProxyWalletAddress(ctx, rpcURL, c.chainID, c.signer.Address().Hex(), c.rawHTTP)
	if err != nil {
		return err
	}
	deployed, err := IsGnosisSafe(ctx, probe, proxy)
	if err != nil {
		return err
	}
	if deployed {
		c.SetFunder(proxy, model.POLY_GNOSIS_SAFE)
	} else {
		c.SetFunder("", model.EOA)
	}
	return nil
}

func (c *TradingClient) get(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	return c.httpClient.Do(ctx, http.MethodGet, c.clobURL+endpoint, &RequestOptions{Params: params}, out)
}

// sendL2 performs an authenticated request. The HMAC covers the endpoint
// path and body but not query parameters.
func (c *TradingClient) sendL2(ctx context.Context, method, endpoint string, params map[string]string, body []byte, out interface{}) error {
	if c.signer == nil {
		return types.ErrSignerUnavailable
	}
	headers, err := BuildAuthHeadersL2(c.creds, c.signer.Address().Hex(), method, endpoint, body, 0)
	if err != nil {
		return err
	}
	return c.httpClient.Do(ctx, method, c.clobURL+endpoint, &RequestOptions{
		Headers: headers,
		Params:  params,
		Body:    body,
	}, out)
}

// GetPrice returns the best price for a token on one side of the book.
func (c *TradingClient) GetPrice(ctx context.Context, tokenID string, side types.Side) (*types.PriceResponse, error) {
	out := &types.PriceResponse{}
	err := c.get(ctx, PriceEndpoint, map[string]string{"token_id": tokenID, "side": string(side)}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetMidpoint returns the midpoint between best bid and best ask.
func (c *TradingClient) GetMidpoint(ctx context.Context, tokenID string) (*types.MidpointResponse, error) {
	out := &types.MidpointResponse{}
	err := c.get(ctx, MidpointEndpoint, map[string]string{"token_id": tokenID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrderBook returns the full book for a token.
func (c *TradingClient) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error) {
	out := &types.OrderBook{}
	err := c.get(ctx, OrderBookEndpoint, map[string]string{"token_id": tokenID}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTickSize returns the minimum price increment for a token.
func (c *TradingClient) GetTickSize(ctx context.Context, tokenID string) (float64, error) {
	out := &types.TickSizeResponse{}
	err := c.get(ctx, TickSizeEndpoint, map[string]string{"token_id": tokenID}, out)
	if err != nil {
		return 0, err
	}
	return out.MinimumTickSize, nil
}

// GetBalanceAllowance returns the funder's balance and exchange allowance for
// an asset. Requires L2 credentials.
func (c *TradingClient) GetBalanceAllowance(ctx context.Context, assetType types.AssetType, tokenID string) (*types.BalanceAllowanceResponse, error) {
	params := map[string]string{
		"asset_type":     string(assetType),
		"signature_type": c.signatureTypeParam(),
	}
	if tokenID != "" {
		params["token_id"] = tokenID
	}
	out := &types.BalanceAllowanceResponse{}
	if err := c.sendL2(ctx, http.MethodGet, BalanceAllowanceEndpoint, params, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TradingClient) signatureTypeParam() string {
	return strconv.Itoa(int(c.signatureType))
}

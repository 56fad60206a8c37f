package trading

import (
	"context"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polymarket/go-order-utils/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

func TestNewTradingClient_UnsupportedChain(t *testing.T) {
	t.Parallel()

	_, err := NewTradingClient(DefaultClobURL, 1, nil, nil)
	assert.ErrorIs(t, err, types.ErrConfigUnsupported)
}

func TestNewTradingClient_DefaultsURL(t *testing.T) {
	t.Parallel()

	client, err := NewTradingClient("", ChainIDPolygon, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultClobURL, client.clobURL)
}

func TestGetPrice(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"price":"0.42"}`, nil), nil
	})

	resp, err := client.GetPrice(context.Background(), "123456", types.SideBuy)
	require.NoError(t, err)
	assert.Equal(t, "0.42", resp.Price)

	require.NotNil(t, captured)
	assert.Equal(t, PriceEndpoint, captured.URL.Path)
	assert.Equal(t, "123456", captured.URL.Query().Get("token_id"))
	assert.Equal(t, "BUY", captured.URL.Query().Get("side"))
}

func TestGetMidpoint(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, MidpointEndpoint, req.URL.Path)
		return newResponse(http.StatusOK, `{"mid":"0.515"}`, nil), nil
	})

	resp, err := client.GetMidpoint(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "0.515", resp.Mid)
}

func TestGetOrderBook(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, OrderBookEndpoint, req.URL.Path)
		body := `{"market":"0xmkt","asset_id":"123456","bids":[{"price":"0.49","size":"100"}],"asks":[{"price":"0.51","size":"200"}]}`
		return newResponse(http.StatusOK, body, nil), nil
	})

	book, err := client.GetOrderBook(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", book.AssetID)
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "0.49", book.Bids[0].Price)
	assert.Equal(t, "200", book.Asks[0].Size)
}

func TestGetBalanceAllowance(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return newResponse(http.StatusOK, `{"balance":"100000000","allowance":"50000000"}`, nil), nil
	})

	resp, err := client.GetBalanceAllowance(context.Background(), types.AssetTypeCollateral, "")
	require.NoError(t, err)
	assert.Equal(t, "100000000", resp.Balance)
	assert.Equal(t, "50000000", resp.Allowance)

	require.NotNil(t, captured)
	assert.Equal(t, BalanceAllowanceEndpoint, captured.URL.Path)
	assert.Equal(t, "COLLATERAL", captured.URL.Query().Get("asset_type"))
	assert.Equal(t, "0", captured.URL.Query().Get("signature_type"))
	assert.NotEmpty(t, captured.Header.Get(HeaderPolySignature))
	assert.Equal(t, testCreds().ApiKey, captured.Header.Get(HeaderPolyAPIKey))
}

func TestGetBalanceAllowance_RequiresSigner(t *testing.T) {
	t.Parallel()

	client, err := NewTradingClient(DefaultClobURL, ChainIDPolygon, nil, testCreds())
	require.NoError(t, err)

	_, err = client.GetBalanceAllowance(context.Background(), types.AssetTypeCollateral, "")
	assert.ErrorIs(t, err, types.ErrSignerUnavailable)
}

const derivedProxyWord = "0x0000000000000000000000001111222233334444555566667777888899990000"

func rpcAndClobTransport(t *testing.T) roundTripFunc {
	t.Helper()
	return func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "rpc.test" {
			return newResponse(http.StatusOK, `{"jsonrpc":"2.0","result":"`+derivedProxyWord+`","id":1}`, nil), nil
		}
		t.Fatalf("unexpected host %s", req.URL.Host)
		return nil, nil
	}
}

func TestDetectSignatureType_DeployedProxy(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, rpcAndClobTransport(t))
	proxy := common.HexToAddress("0x1111222233334444555566667777888899990000")
	probe := &fakeProbe{code: map[common.Address][]byte{proxy: {0x60}}}

	require.NoError(t, client.DetectSignatureType(context.Background(), "https://rpc.test", probe))
	assert.Equal(t, model.POLY_GNOSIS_SAFE, client.signatureType)
	assert.Equal(t, proxy.Hex(), client.funder)
}

func TestDetectSignatureType_CounterfactualProxy(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, rpcAndClobTransport(t))
	probe := &fakeProbe{}

	require.NoError(t, client.DetectSignatureType(context.Background(), "https://rpc.test", probe))
	assert.Equal(t, model.EOA, client.signatureType)
	assert.Empty(t, client.funder)
}

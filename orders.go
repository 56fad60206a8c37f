package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polymarket/go-order-utils/pkg/model"

	sdkerrors "github.com/GoPolymarket/go-trading-client/pkg/errors"
	"github.com/GoPolymarket/go-trading-client/pkg/logger"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

// MarketOrderArgs describes a marketable order. Amount is in USDC for buys
// and in outcome tokens for sells. A zero Price means fetch the current best
// price from the book.
type MarketOrderArgs struct {
	TokenID    string
	Amount     float64
	Price      float64
	Side       types.Side
	FeeRateBps int
	Nonce      int64
	Taker      string
	NegRisk    bool
}

// CreateMarketOrder builds and signs a marketable limit order against the
// exchange contracts for the client's chain.
func (c *TradingClient) CreateMarketOrder(ctx context.Context, args *MarketOrderArgs) (*model.SignedOrder, error) {
	if c.signer == nil || c.orderBuilder == nil {
		return nil, types.ErrSignerUnavailable
	}
	if !IsExchangeConfigValid(c.contractConfig) {
		return nil, types.ErrConfigUnsupported
	}
	if args.Amount <= 0 {
		return nil, types.ErrInvalidAmount
	}

	price := args.Price
	if price == 0 {
		resolved, err := c.marketPrice(ctx, args.TokenID, args.Side)
		if err != nil {
			return nil, err
		}
		price = resolved
	}
	if price <= 0 || price >= 1 {
		return nil, types.ErrInvalidPrice
	}

	tickSize, err := c.GetTickSize(ctx, args.TokenID)
	if err != nil {
		return nil, err
	}
	sizePrecision, amountPrecision := getRoundingConfig(tickSize)

	var makerAmount, takerAmount string
	switch args.Side {
	case types.SideBuy:
		// Spending args.Amount USDC for tokens at price.
		tokens := roundAmount(args.Amount/price, sizePrecision)
		usd := roundAmount(tokens*price, amountPrecision)
		makerAmount = usdToRawAmount(usd)
		takerAmount = usdToRawAmount(tokens)
	case types.SideSell:
		// Selling args.Amount tokens for USDC at price.
		tokens := roundAmount(args.Amount, sizePrecision)
		usd := roundAmount(tokens*price, amountPrecision)
		makerAmount = usdToRawAmount(tokens)
		takerAmount = usdToRawAmount(usd)
	default:
		return nil, fmt.Errorf("unknown side %q", args.Side)
	}

	taker := args.Taker
	if taker == "" {
		taker = types.ZeroAddress
	}
	maker := c.signer.Address().Hex()
	if c.funder != "" {
		maker = c.funder
	}

	side := model.BUY
	if args.Side == types.SideSell {
		side = model.SELL
	}

	orderData := &model.OrderData{
		Maker:         maker,
		Taker:         taker,
		TokenId:       args.TokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Side:          side,
		FeeRateBps:    strconv.Itoa(args.FeeRateBps),
		Nonce:         strconv.FormatInt(args.Nonce, 10),
		Signer:        c.signer.Address().Hex(),
		Expiration:    "0",
		SignatureType: c.signatureType,
	}

	contract := model.CTFExchange
	if args.NegRisk {
		contract = model.NegRiskCTFExchange
	}

	signedOrder, err := c.orderBuilder.BuildSignedOrder(c.signer.PrivateKey(), orderData, contract)
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}

	logger.Debug("order built maker=%s token=%s side=%s maker_amount=%s taker_amount=%s",
		maker, args.TokenID, args.Side, makerAmount, takerAmount)
	return signedOrder, nil
}

// PostOrder submits a signed order. Owner on the wire is the API key, not the
// maker address.
func (c *TradingClient) PostOrder(ctx context.Context, order *model.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if c.creds == nil {
		return nil, types.ErrMissingCredentials
	}
	if orderType == "" {
		orderType = types.OrderTypeGTC
	}

	request := types.PostOrderRequest{
		Order:     signedOrderPayload(order),
		Owner:     c.creds.ApiKey,
		OrderType: string(orderType),
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	out := &types.OrderResponse{}
	if err := c.sendL2(ctx, http.MethodPost, PostOrderEndpoint, nil, body, out); err != nil {
		return nil, err
	}
	if !out.Success {
		return out, fmt.Errorf("order rejected: %s", out.ErrorMsg)
	}
	return out, nil
}

// CreateOrDeriveApiKey returns L2 credentials for the signer, deriving the
// existing key first and falling back to creating a fresh one.
func (c *TradingClient) CreateOrDeriveApiKey(ctx context.Context, nonce int64) (*types.ApiCreds, error) {
	if c.signer == nil {
		return nil, types.ErrSignerUnavailable
	}
	headers, err := BuildAuthHeadersL1(c.signer, 0, nonce)
	if err != nil {
		return nil, err
	}

	creds := &types.ApiCreds{}
	err = c.httpClient.Do(ctx, http.MethodGet, c.clobURL+DeriveApiKeyEndpoint, &RequestOptions{Headers: headers}, creds)
	if err == nil && creds.ApiKey != "" {
		return creds, nil
	}

	creds = &types.ApiCreds{}
	if err := c.httpClient.Do(ctx, http.MethodPost, c.clobURL+CreateApiKeyEndpoint, &RequestOptions{Headers: headers}, creds); err != nil {
		return nil, err
	}
	if creds.ApiKey == "" {
		return nil, sdkerrors.ErrUnauthorized
	}
	return creds, nil
}

func (c *TradingClient) marketPrice(ctx context.Context, tokenID string, side types.Side) (float64, error) {
	resp, err := c.GetPrice(ctx, tokenID, side)
	if err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", resp.Price, err)
	}
	return price, nil
}

func signedOrderPayload(order *model.SignedOrder) types.SignedOrderPayload {
	sideStr := "BUY"
	if order.Side.Uint64() == uint64(model.SELL) {
		sideStr = "SELL"
	}
	return types.SignedOrderPayload{
		Salt:          order.Salt.Int64(),
		Maker:         order.Maker.Hex(),
		Signer:        order.Signer.Hex(),
		Taker:         order.Taker.Hex(),
		TokenID:       order.TokenId.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		Side:          sideStr,
		SignatureType: int(order.SignatureType.Int64()),
		Signature:     "0x" + common.Bytes2Hex(order.Signature),
	}
}

// usdToRawAmount converts to the 6-decimal raw representation. Rounding, not
// truncation: values like 2.09 sit just below their decimal value as floats
// and would otherwise serialize off by one.
func usdToRawAmount(usd float64) string {
	return strconv.FormatInt(int64(math.Round(usd*1_000_000)), 10)
}

// getRoundingConfig maps a tick size to size and amount precision.
func getRoundingConfig(tickSize float64) (sizePrecision int, amountPrecision int) {
	switch tickSize {
	case 0.1:
		return 2, 3
	case 0.01:
		return 2, 4
	case 0.001:
		return 2, 5
	case 0.0001:
		return 2, 6
	default:
		return 2, 4
	}
}

func roundAmount(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}

// Package nodeclient is a minimal JSON-RPC 2.0 transport for the handful of
// raw node calls the SDK makes itself. One request, one response: no retries,
// no batching, no connection management beyond what net/http provides.
// Callers wanting resilience wrap it externally.
package nodeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	sdkerrors "github.com/GoPolymarket/go-trading-client/pkg/errors"
)

// requestID is fixed: the transport is strictly synchronous, so responses
// never need to be correlated.
const requestID = 1

const blockTagLatest = "latest"

// Request is the JSON-RPC 2.0 envelope. Field order is part of the contract:
// serialized bodies are byte-for-byte stable for fixture comparison.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// CallParams is the first parameter of an eth_call.
type CallParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Response is the JSON-RPC 2.0 response envelope. Result and Error are both
// optional on the wire; Call collapses the ambiguity into (string, error).
type Response struct {
	JSONRPC string `json:"jsonrpc,omitempty"`
	Result  string `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      int    `json:"id,omitempty"`
}

// NewEthCallRequest builds an eth_call envelope against the latest block.
func NewEthCallRequest(to, data string) Request {
	return Request{
		JSONRPC: "2.0",
		Method:  "eth_call",
		Params:  []interface{}{CallParams{To: to, Data: data}, blockTagLatest},
		ID:      requestID,
	}
}

// Post issues a single JSON-RPC request over HTTP.
//
// Failure mapping:
//   - transport failure or non-2xx status -> RPC_REQUEST_FAILED
//   - missing or unparsable body          -> RPC_RESPONSE_EMPTY
func Post(ctx context.Context, client *http.Client, rpcURL string, req Request) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.CodeRPCRequestFailed, err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.CodeRPCRequestFailed, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.CodeRPCRequestFailed, err, "post %s", rpcURL)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, sdkerrors.New(sdkerrors.CodeRPCRequestFailed, "http status %d from %s", httpResp.StatusCode, rpcURL)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.CodeRPCResponseEmpty, err, "read response body")
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, sdkerrors.New(sdkerrors.CodeRPCResponseEmpty, "empty response body")
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, sdkerrors.Wrap(sdkerrors.CodeRPCResponseEmpty, err, "decode response body")
	}
	return &resp, nil
}

// Call issues eth_call with the given target and calldata and returns the raw
// hex result.
//
// On top of Post's mapping:
//   - populated error object        -> RPC_ERROR:<code>
//   - neither result nor error      -> RPC_INVALID_RESULT
func Call(ctx context.Context, client *http.Client, rpcURL, to, data string) (string, error) {
	resp, err := Post(ctx, client, rpcURL, NewEthCallRequest(to, data))
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", sdkerrors.NewJSONRPC(resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == "" {
		return "", sdkerrors.New(sdkerrors.CodeRPCInvalidResult, "response carries neither result nor error")
	}
	return resp.Result, nil
}

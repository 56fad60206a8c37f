package nodeclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/GoPolymarket/go-trading-client/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newClient(f roundTripFunc) *http.Client {
	return &http.Client{Transport: f}
}

const (
	testFactory = "0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b"
	testData    = "0xd600539a000000000000000000000000abc0000000000000000000000000000000000def"
)

func TestPost_SerializesExactRequestBody(t *testing.T) {
	t.Parallel()

	var gotBody string
	var gotContentType string
	client := newClient(func(req *http.Request) (*http.Response, error) {
		b, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		gotBody = string(b)
		gotContentType = req.Header.Get("Content-Type")
		return newResponse(http.StatusOK, `{"jsonrpc":"2.0","result":"0x01","id":1}`), nil
	})

	_, err := Post(context.Background(), client, "https://rpc.test", NewEthCallRequest(testFactory, testData))
	require.NoError(t, err)

	want := `{"jsonrpc":"2.0","method":"eth_call","params":[{"to":"` + testFactory + `","data":"` + testData + `"},"latest"],"id":1}`
	assert.Equal(t, want, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestPost_NonOKStatus(t *testing.T) {
	t.Parallel()

	client := newClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusBadGateway, "upstream sad"), nil
	})

	_, err := Post(context.Background(), client, "https://rpc.test", NewEthCallRequest(testFactory, testData))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrRPCRequestFailed))
	assert.Contains(t, err.Error(), "RPC_REQUEST_FAILED")
}

func TestPost_TransportError(t *testing.T) {
	t.Parallel()

	client := newClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := Post(context.Background(), client, "https://rpc.test", NewEthCallRequest(testFactory, testData))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrRPCRequestFailed))
}

func TestPost_EmptyAndUnparsableBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "   ", "not-json{"} {
		client := newClient(func(req *http.Request) (*http.Response, error) {
			return newResponse(http.StatusOK, body), nil
		})

		_, err := Post(context.Background(), client, "https://rpc.test", NewEthCallRequest(testFactory, testData))
		require.Error(t, err, "body %q", body)
		assert.True(t, errors.Is(err, sdkerrors.ErrRPCResponseEmpty), "body %q", body)
	}
}

func TestCall_NodeError(t *testing.T) {
	t.Parallel()

	client := newClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"jsonrpc":"2.0","error":{"code":-32000,"message":"error"},"id":1}`), nil
	})

	_, err := Call(context.Background(), client, "https://rpc.test", testFactory, testData)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrRPCError))
	assert.Contains(t, err.Error(), "RPC_ERROR:-32000")
}

func TestCall_NeitherResultNorError(t *testing.T) {
	t.Parallel()

	client := newClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1}`), nil
	})

	_, err := Call(context.Background(), client, "https://rpc.test", testFactory, testData)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrRPCInvalidResult))
	assert.Contains(t, err.Error(), "RPC_INVALID_RESULT")
}

func TestCall_HappyPath(t *testing.T) {
	t.Parallel()

	client := newClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"jsonrpc":"2.0","result":"0x0000000000000000000000001111222233334444555566667777888899990000","id":1}`), nil
	})

	result, err := Call(context.Background(), client, "https://rpc.test", testFactory, testData)
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000001111222233334444555566667777888899990000", result)
}

package trading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPolymarket/go-trading-client/pkg/signer"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

// base64("secret") with URL-safe alphabet.
const testSecret = "c2VjcmV0"

func testCreds() *types.ApiCreds {
	return &types.ApiCreds{
		ApiKey:     "11111111-2222-3333-4444-555555555555",
		Secret:     testSecret,
		Passphrase: "test-passphrase",
	}
}

func TestSignHMAC_GoldenVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "post order",
			message: `1700000000POST/order{"order":{}}`,
			want:    "_FDrrr__aY8i21bFaGElAi670nKM9uTSXbOld8PogsM=",
		},
		{
			name:    "get derive key",
			message: "1700000000GET/auth/derive-api-key",
			want:    "cHBbmdgITCitb92en76LFdC54qF6GsAoue_0Xoy5iyE=",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := signHMAC(testSecret, tc.message)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSignHMAC_InvalidSecret(t *testing.T) {
	t.Parallel()

	_, err := signHMAC("!!not-base64!!", "message")
	assert.Error(t, err)
}

func TestBuildAuthHeadersL2(t *testing.T) {
	t.Parallel()

	headers, err := BuildAuthHeadersL2(testCreds(), "0xAbC", "POST", PostOrderEndpoint, []byte(`{"order":{}}`), 1700000000)
	require.NoError(t, err)

	assert.Equal(t, "0xAbC", headers.Get(HeaderPolyAddress))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", headers.Get(HeaderPolyAPIKey))
	assert.Equal(t, "test-passphrase", headers.Get(HeaderPolyPassphrase))
	assert.Equal(t, "1700000000", headers.Get(HeaderPolyTimestamp))
	assert.Equal(t, "_FDrrr__aY8i21bFaGElAi670nKM9uTSXbOld8PogsM=", headers.Get(HeaderPolySignature))
}

func TestBuildAuthHeadersL2_MissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := BuildAuthHeadersL2(nil, "0xAbC", "GET", PriceEndpoint, nil, 0)
	assert.ErrorIs(t, err, types.ErrMissingCredentials)

	_, err = BuildAuthHeadersL2(&types.ApiCreds{ApiKey: "only-key"}, "0xAbC", "GET", PriceEndpoint, nil, 0)
	assert.ErrorIs(t, err, types.ErrMissingCredentials)
}

func TestBuildAuthHeadersL1(t *testing.T) {
	t.Parallel()

	s, err := signer.NewPrivateKeySigner("0x0123456789012345678901234567890123456789012345678901234567890123", ChainIDPolygon)
	require.NoError(t, err)

	headers, err := BuildAuthHeadersL1(s, 1700000000, 0)
	require.NoError(t, err)

	assert.Equal(t, s.Address().Hex(), headers.Get(HeaderPolyAddress))
	assert.Equal(t, "1700000000", headers.Get(HeaderPolyTimestamp))
	assert.Equal(t, "0", headers.Get(HeaderPolyNonce))

	sig := headers.Get(HeaderPolySignature)
	assert.True(t, strings.HasPrefix(sig, "0x"))
	// 65 signature bytes hex-encoded.
	assert.Len(t, sig, 132)

	// Same inputs sign to the same bytes.
	again, err := BuildAuthHeadersL1(s, 1700000000, 0)
	require.NoError(t, err)
	assert.Equal(t, sig, again.Get(HeaderPolySignature))
}

func TestCreateL1AuthSignature_NilSigner(t *testing.T) {
	t.Parallel()

	_, err := CreateL1AuthSignature(nil, 1700000000, 0)
	assert.ErrorIs(t, err, types.ErrSignerUnavailable)
}

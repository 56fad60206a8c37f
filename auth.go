package trading

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/GoPolymarket/go-trading-client/pkg/signer"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

const (
	HeaderPolyAddress = "POLY_ADDRESS"
	// #nosec G101 -- header names, not hardcoded credentials.
	HeaderPolyAPIKey = "POLY_API_KEY"
	// #nosec G101 -- header names, not hardcoded credentials.
	HeaderPolyPassphrase = "POLY_PASSPHRASE"
	HeaderPolySignature  = "POLY_SIGNATURE"
	HeaderPolyTimestamp  = "POLY_TIMESTAMP"
	HeaderPolyNonce      = "POLY_NONCE"
)

const clobAuthMessage = "This message attests that I control the given wallet"

// CreateL1AuthSignature signs the ClobAuth EIP-712 attestation used to create
// or derive API credentials.
func CreateL1AuthSignature(s signer.Signer, timestamp int64, nonce int64) (string, error) {
	if s == nil {
		return "", types.ErrSignerUnavailable
	}

	domain := &apitypes.TypedDataDomain{
		Name:    "ClobAuthDomain",
		Version: "1",
		ChainId: math.NewHexOrDecimal256(s.ChainID().Int64()),
	}
	authTypes := apitypes.Types{
		"EIP712Domain": []apitypes.Type{
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
		},
		"ClobAuth": []apitypes.Type{
			{Name: "address", Type: "address"},
			{Name: "timestamp", Type: "string"},
			{Name: "nonce", Type: "uint256"},
			{Name: "message", Type: "string"},
		},
	}
	message := apitypes.TypedDataMessage{
		"address":   s.Address().Hex(),
		"timestamp": strconv.FormatInt(timestamp, 10),
		"nonce":     math.NewHexOrDecimal256(nonce),
		"message":   clobAuthMessage,
	}

	sig, err := s.SignTypedData(domain, authTypes, message, "ClobAuth")
	if err != nil {
		return "", fmt.Errorf("sign clob auth: %w", err)
	}
	return hexutil.Encode(sig), nil
}

// BuildAuthHeadersL1 builds the headers for the credential endpoints. A zero
// timestamp means now.
func BuildAuthHeadersL1(s signer.Signer, timestamp int64, nonce int64) (http.Header, error) {
	if s == nil {
		return nil, types.ErrSignerUnavailable
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	sig, err := CreateL1AuthSignature(s, timestamp, nonce)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set(HeaderPolyAddress, s.Address().Hex())
	headers.Set(HeaderPolySignature, sig)
	headers.Set(HeaderPolyTimestamp, strconv.FormatInt(timestamp, 10))
	headers.Set(HeaderPolyNonce, strconv.FormatInt(nonce, 10))
	return headers, nil
}

// BuildAuthHeadersL2 builds the HMAC headers for authenticated CLOB calls.
// The signed message is timestamp + method + path + body, with the secret
// treated as base64. A zero timestamp means now.
func BuildAuthHeadersL2(creds *types.ApiCreds, address, method, path string, body []byte, timestamp int64) (http.Header, error) {
	if creds == nil || creds.ApiKey == "" || creds.Secret == "" || creds.Passphrase == "" {
		return nil, types.ErrMissingCredentials
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	message := fmt.Sprintf("%d%s%s", timestamp, method, path)
	if len(body) > 0 {
		message += string(body)
	}
	sig, err := signHMAC(creds.Secret, message)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set(HeaderPolyAddress, address)
	headers.Set(HeaderPolySignature, sig)
	headers.Set(HeaderPolyTimestamp, strconv.FormatInt(timestamp, 10))
	headers.Set(HeaderPolyAPIKey, creds.ApiKey)
	headers.Set(HeaderPolyPassphrase, creds.Passphrase)
	return headers, nil
}

func signHMAC(secret string, message string) (string, error) {
	decodedSecret, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, decodedSecret)
	h.Write([]byte(message))
	return base64.URLEncoding.EncodeToString(h.Sum(nil)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(secret)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.RawURLEncoding.DecodeString(secret)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.StdEncoding.DecodeString(secret)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.RawStdEncoding.DecodeString(secret)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("invalid base64 secret: %w", err)
}

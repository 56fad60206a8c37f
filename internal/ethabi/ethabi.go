// Package ethabi implements the narrow call encoding the proxy-wallet
// derivation needs: a 4-byte selector plus left-padded address words. It is
// deliberately not a general ABI codec.
package ethabi

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	sdkerrors "github.com/GoPolymarket/go-trading-client/pkg/errors"
)

const (
	addressHexLen = 40
	wordHexLen    = 64
)

// FunctionSelector computes the 4-byte selector for a function signature,
// e.g. "computeProxyAddress(address)" -> "0xd600539a". The signature string
// is hashed as-is; malformed signatures are the caller's responsibility.
func FunctionSelector(signature string) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	return "0x" + hex.EncodeToString(hasher.Sum(nil)[:4])
}

// EncodeAddress lowercases an address, strips any 0x prefix and left-pads it
// with zeros to a 32-byte word (64 hex chars, no prefix). No checksum or
// length validation is performed; short input is padded as-is.
func EncodeAddress(addr string) string {
	clean := strings.TrimPrefix(strings.ToLower(addr), "0x")
	if len(clean) >= wordHexLen {
		return clean
	}
	return strings.Repeat("0", wordHexLen-len(clean)) + clean
}

// DecodeAddress extracts the address from a 32-byte return word per the ABI
// right-alignment rule: the trailing 20 bytes, re-prefixed with 0x. Words too
// short to contain an address fail with the RPC_INVALID_RESULT kind instead
// of silently producing a truncated address.
func DecodeAddress(word string) (string, error) {
	clean := strings.TrimPrefix(strings.ToLower(word), "0x")
	if len(clean) < addressHexLen {
		return "", sdkerrors.New(sdkerrors.CodeRPCInvalidResult, "result %q is too short to contain an address", word)
	}
	return "0x" + clean[len(clean)-addressHexLen:], nil
}

// CallData concatenates a 0x-prefixed selector with encoded argument words.
func CallData(selector string, args ...string) string {
	var b strings.Builder
	b.WriteString(selector)
	for _, arg := range args {
		b.WriteString(arg)
	}
	return b.String()
}

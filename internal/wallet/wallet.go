// Package wallet derives deterministic smart-contract wallet addresses for an
// owner EOA, either by asking the factory contract over a raw eth_call or
// offline via CREATE2 when the factory's init code hash is known.
package wallet

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/GoPolymarket/go-trading-client/internal/ethabi"
	"github.com/GoPolymarket/go-trading-client/internal/nodeclient"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

// DefaultFunctionSignature is the factory view the derivation calls unless
// overridden.
const DefaultFunctionSignature = "computeProxyAddress(address)"

// DeriveOptions overrides the derivation defaults. The factory address has no
// baked-in default here; callers resolve it from their chain config.
type DeriveOptions struct {
	// FunctionSignature replaces DefaultFunctionSignature.
	FunctionSignature string

	// ProxyFactoryAddress is the factory contract the eth_call targets.
	ProxyFactoryAddress string

	// HTTPClient replaces http.DefaultClient for the underlying POST.
	HTTPClient *http.Client
}

// DeriveSafeProxyAddress asks the factory contract for the proxy wallet
// address owned by owner. The result is deterministic for a fixed chain
// state, factory and owner. Any transport or protocol failure from the
// node propagates unchanged; no retries are attempted.
func DeriveSafeProxyAddress(ctx context.Context, rpcURL, owner string, opts *DeriveOptions) (string, error) {
	if opts == nil {
		opts = &DeriveOptions{}
	}
	if opts.ProxyFactoryAddress == "" {
		return "", types.ErrConfigUnsupported
	}
	signature := opts.FunctionSignature
	if signature == "" {
		signature = DefaultFunctionSignature
	}

	data := ethabi.CallData(ethabi.FunctionSelector(signature), ethabi.EncodeAddress(owner))
	result, err := nodeclient.Call(ctx, opts.HTTPClient, rpcURL, opts.ProxyFactoryAddress, data)
	if err != nil {
		return "", err
	}
	return ethabi.DecodeAddress(result)
}

// DeriveSafeAddressLocal computes the CREATE2 address the Safe factory would
// deploy for eoa, without touching the network. The salt is the keccak of the
// owner address left-padded to 32 bytes, matching the factory's scheme.
func DeriveSafeAddressLocal(eoa, safeFactory, initCodeHash string) (string, error) {
	if safeFactory == "" {
		return "", types.ErrConfigUnsupported
	}
	codeHash, err := hexutil.Decode(initCodeHash)
	if err != nil {
		return "", fmt.Errorf("invalid safe init code hash: %w", err)
	}
	addr := common.HexToAddress(eoa)
	salt := crypto.Keccak256(common.LeftPadBytes(addr.Bytes(), 32))
	safeAddr := crypto.CreateAddress2(common.HexToAddress(safeFactory), common.BytesToHash(salt), codeHash)
	return safeAddr.Hex(), nil
}

// DeriveProxyWalletAddressLocal is the proxy-factory variant: the salt is the
// keccak of the raw 20-byte owner address.
func DeriveProxyWalletAddressLocal(eoa, proxyFactory, initCodeHash string) (string, error) {
	if proxyFactory == "" {
		return "", types.ErrConfigUnsupported
	}
	codeHash, err := hexutil.Decode(initCodeHash)
	if err != nil {
		return "", fmt.Errorf("invalid proxy init code hash: %w", err)
	}
	addr := common.HexToAddress(eoa)
	salt := crypto.Keccak256(addr.Bytes())
	proxyAddr := crypto.CreateAddress2(common.HexToAddress(proxyFactory), common.BytesToHash(salt), codeHash)
	return proxyAddr.Hex(), nil
}

package trading

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/GoPolymarket/go-trading-client/internal/wallet"
)

// ChainProbe reads deployed bytecode. chainio.Provider satisfies it; tests
// substitute fakes.
type ChainProbe interface {
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
}

// DeriveProxyWalletAddress asks the chain's Safe factory which proxy wallet
// belongs to eoa. The chain must have a factory configured.
func DeriveProxyWalletAddress(ctx context.Context, rpcURL string, chainID int64, eoa string) (string, error) {
	return deriveProxyWalletAddress(ctx, rpcURL, chainID, eoa, nil)
}

func deriveProxyWalletAddress(ctx context.Context, rpcURL string, chainID int64, eoa string, httpClient *http.Client) (string, error) {
	config, err := GetContractConfig(chainID)
	if err != nil {
		return "", err
	}
	return wallet.DeriveSafeProxyAddress(ctx, rpcURL, eoa, &wallet.DeriveOptions{
		ProxyFactoryAddress: config.SafeFactory,
		HTTPClient:          httpClient,
	})
}

// DeriveProxyWalletAddressLocal computes the CREATE2 address the chain's
// proxy wallet factory would deploy for eoa, without touching the network.
// The factory's init code hash must be supplied by the caller.
func DeriveProxyWalletAddressLocal(chainID int64, eoa, initCodeHash string) (string, error) {
	config, err := GetContractConfig(chainID)
	if err != nil {
		return "", err
	}
	return wallet.DeriveProxyWalletAddressLocal(eoa, config.ProxyFactory, initCodeHash)
}

// IsGnosisSafe reports whether a contract is deployed at address. An address
// with no code is a counterfactual wallet or a plain EOA.
func IsGnosisSafe(ctx context.Context, probe ChainProbe, address string) (bool, error) {
	code, err := probe.CodeAt(ctx, common.HexToAddress(address))
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

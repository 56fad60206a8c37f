// Package chainio wraps a go-ethereum client with the narrow provider surface
// the SDK needs: code probing, gas pricing and receipt waiting. Everything
// else stays behind bind.ContractBackend for contract bindings.
package chainio

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

type Provider struct {
	rpc    *rpc.Client
	client *ethclient.Client
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, endpoint string) (*Provider, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return &Provider{rpc: rpcClient, client: ethclient.NewClient(rpcClient)}, nil
}

func (p *Provider) Close() {
	p.client.Close()
}

// Backend exposes the client for contract bindings.
func (p *Provider) Backend() bind.ContractBackend {
	return p.client
}

func (p *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.client.ChainID(ctx)
}

// CodeAt returns the deployed bytecode at account on the latest block.
func (p *Provider) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return p.client.CodeAt(ctx, account, nil)
}

// SuggestGasPrice returns the node's current gas price estimate.
func (p *Provider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return p.client.SuggestGasPrice(ctx)
}

// WaitMined blocks until tx is mined and returns its receipt.
func (p *Provider) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	return bind.WaitMined(ctx, p.client, tx)
}

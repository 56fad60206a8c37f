package trading

import (
	"context"

	"github.com/sethvargo/go-envconfig"

	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

// DefaultClobURL is the production CLOB API host.
const DefaultClobURL = "https://clob.polymarket.com"

const (
	ChainIDPolygon = int64(137)
	ChainIDAmoy    = int64(80002)
)

var polygonConfig = types.ContractConfig{
	Exchange:          "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E",
	NegRiskExchange:   "0xC5d563A36AE78145C45a50134d48A1215220f80a",
	ConditionalTokens: "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045",
	Collateral:        "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
	SafeFactory:       "0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b",
	ProxyFactory:      "0xaB45c5A4B0c941a2F231C04C3f49182e1A254052",
}

// Amoy carries the wallet factories only; the testnet CLOB contracts are not
// wired, so order and approval paths reject the chain via the validity checks.
var amoyConfig = types.ContractConfig{
	SafeFactory: "0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b",
}

// GetContractConfig returns the contract addresses for a supported chain.
func GetContractConfig(chainID int64) (types.ContractConfig, error) {
	switch chainID {
	case ChainIDPolygon:
		return polygonConfig, nil
	case ChainIDAmoy:
		return amoyConfig, nil
	default:
		return types.ContractConfig{}, types.ErrConfigUnsupported
	}
}

// IsExchangeConfigValid reports whether the config can settle CLOB orders.
func IsExchangeConfigValid(config types.ContractConfig) bool {
	return config.Exchange != "" && config.ConditionalTokens != "" && config.Collateral != ""
}

// IsWalletConfigValid reports whether proxy wallets can be derived.
func IsWalletConfigValid(config types.ContractConfig) bool {
	return config.SafeFactory != ""
}

// ClientConfig is the operational configuration, loadable from the
// environment. All fields have usable defaults except the private key and API
// credentials, which stay empty for read-only use.
type ClientConfig struct {
	ClobURL string `env:"CLOB_API_URL,default=https://clob.polymarket.com"`
	RPCURL  string `env:"RPC_URL,default=https://polygon-rpc.com"`
	ChainID int64  `env:"CHAIN_ID,default=137"`

	PrivateKey string `env:"PRIVATE_KEY"`

	ApiKey     string `env:"CLOB_API_KEY"`
	Secret     string `env:"CLOB_SECRET"`
	Passphrase string `env:"CLOB_PASS_PHRASE"`

	// Funder is the proxy wallet that holds funds when trading through a
	// smart-contract wallet. Empty means the EOA trades directly.
	Funder        string `env:"FUNDER_ADDRESS"`
	SignatureType int    `env:"SIGNATURE_TYPE,default=0"`
}

// LoadClientConfig reads ClientConfig from the environment.
func LoadClientConfig(ctx context.Context) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Creds returns the configured API credentials, or nil when absent.
func (c *ClientConfig) Creds() *types.ApiCreds {
	if c.ApiKey == "" || c.Secret == "" || c.Passphrase == "" {
		return nil
	}
	return &types.ApiCreds{ApiKey: c.ApiKey, Secret: c.Secret, Passphrase: c.Passphrase}
}

package trading

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/GoPolymarket/go-trading-client/internal/chainio"
	sdkerrors "github.com/GoPolymarket/go-trading-client/pkg/errors"
	"github.com/GoPolymarket/go-trading-client/pkg/logger"
	"github.com/GoPolymarket/go-trading-client/pkg/signer"
	"github.com/GoPolymarket/go-trading-client/pkg/types"
)

const conditionalTokensABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"name":"isApprovedForAll","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"name":"setApprovalForAll","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// ApprovalContract is the slice of the ERC-1155 surface the approval flow
// touches. erc1155Approval implements it over a live chain; tests fake it.
type ApprovalContract interface {
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	SetApprovalForAll(opts *bind.TransactOpts, operator common.Address, approved bool) (*ethtypes.Transaction, error)
}

// ApprovalBackend supplies gas pricing and receipt waiting.
type ApprovalBackend interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

type erc1155Approval struct {
	contract *bind.BoundContract
}

// NewERC1155Approval binds the conditional tokens contract at address.
func NewERC1155Approval(address common.Address, backend bind.ContractBackend) (ApprovalContract, error) {
	parsed, err := abi.JSON(strings.NewReader(conditionalTokensABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc1155 abi: %w", err)
	}
	return &erc1155Approval{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (a *erc1155Approval) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var out []interface{}
	err := a.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}
	approved, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isApprovedForAll result %T", out[0])
	}
	return approved, nil
}

func (a *erc1155Approval) SetApprovalForAll(opts *bind.TransactOpts, operator common.Address, approved bool) (*ethtypes.Transaction, error) {
	return a.contract.Transact(opts, "setApprovalForAll", operator, approved)
}

// AllowanceContract is the ERC-20 slice the collateral approval flow touches.
type AllowanceContract interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error)
}

type erc20Allowance struct {
	contract *bind.BoundContract
}

// NewERC20Allowance binds the collateral token at address.
func NewERC20Allowance(address common.Address, backend bind.ContractBackend) (AllowanceContract, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &erc20Allowance{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (a *erc20Allowance) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := a.contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance result %T", out[0])
	}
	return allowance, nil
}

func (a *erc20Allowance) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	return a.contract.Transact(opts, "approve", spender, amount)
}

// ApprovalOptions overrides gas parameters for the approval transaction.
type ApprovalOptions struct {
	GasPrice *big.Int
	GasLimit uint64
}

// EnsureApproval makes operator an approved ERC-1155 operator for the
// signer's tokens, submitting a transaction only when the approval is not
// already in place. The mined receipt must succeed and the on-chain flag must
// read back true, otherwise the whole flow fails.
func EnsureApproval(ctx context.Context, contract ApprovalContract, backend ApprovalBackend, s signer.Signer, operator common.Address, opts *ApprovalOptions) error {
	if s == nil {
		return types.ErrSignerUnavailable
	}
	if opts == nil {
		opts = &ApprovalOptions{}
	}
	owner := s.Address()

	approved, err := contract.IsApprovedForAll(ctx, owner, operator)
	if err != nil {
		return fmt.Errorf("check approval: %w", err)
	}
	if approved {
		return nil
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice, err = backend.SuggestGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("suggest gas price: %w", err)
		}
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(s.PrivateKey(), s.ChainID())
	if err != nil {
		return fmt.Errorf("build transactor: %w", err)
	}
	txOpts.Context = ctx
	txOpts.GasPrice = gasPrice
	txOpts.GasLimit = opts.GasLimit

	tx, err := contract.SetApprovalForAll(txOpts, operator, true)
	if err != nil {
		return sdkerrors.NewApprovalFailed("submit setApprovalForAll: %v", err)
	}
	logger.Info("approval submitted tx=%s operator=%s", tx.Hash().Hex(), operator.Hex())

	receipt, err := backend.WaitMined(ctx, tx)
	if err != nil {
		return sdkerrors.NewApprovalFailed("wait for approval tx %s: %v", tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return sdkerrors.NewApprovalFailed("tx %s reverted", tx.Hash().Hex())
	}

	// Trust the chain, not the receipt: the flag must actually be set.
	approved, err = contract.IsApprovedForAll(ctx, owner, operator)
	if err != nil {
		return fmt.Errorf("recheck approval: %w", err)
	}
	if !approved {
		return sdkerrors.NewApprovalFailed("operator %s still not approved after tx %s", operator.Hex(), tx.Hash().Hex())
	}
	return nil
}

// maxAllowance is the conventional unlimited ERC-20 approval amount.
var maxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// EnsureAllowance grants spender an unlimited ERC-20 allowance from the
// signer unless some allowance already exists. Same receipt and re-check
// discipline as EnsureApproval.
func EnsureAllowance(ctx context.Context, contract AllowanceContract, backend ApprovalBackend, s signer.Signer, spender common.Address, opts *ApprovalOptions) error {
	if s == nil {
		return types.ErrSignerUnavailable
	}
	if opts == nil {
		opts = &ApprovalOptions{}
	}
	owner := s.Address()

	allowance, err := contract.Allowance(ctx, owner, spender)
	if err != nil {
		return fmt.Errorf("check allowance: %w", err)
	}
	if allowance.Sign() > 0 {
		return nil
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice, err = backend.SuggestGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("suggest gas price: %w", err)
		}
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(s.PrivateKey(), s.ChainID())
	if err != nil {
		return fmt.Errorf("build transactor: %w", err)
	}
	txOpts.Context = ctx
	txOpts.GasPrice = gasPrice
	txOpts.GasLimit = opts.GasLimit

	tx, err := contract.Approve(txOpts, spender, maxAllowance)
	if err != nil {
		return sdkerrors.NewApprovalFailed("submit approve: %v", err)
	}
	logger.Info("allowance submitted tx=%s spender=%s", tx.Hash().Hex(), spender.Hex())

	receipt, err := backend.WaitMined(ctx, tx)
	if err != nil {
		return sdkerrors.NewApprovalFailed("wait for allowance tx %s: %v", tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return sdkerrors.NewApprovalFailed("tx %s reverted", tx.Hash().Hex())
	}

	allowance, err = contract.Allowance(ctx, owner, spender)
	if err != nil {
		return fmt.Errorf("recheck allowance: %w", err)
	}
	if allowance.Sign() == 0 {
		return sdkerrors.NewApprovalFailed("spender %s still has zero allowance after tx %s", spender.Hex(), tx.Hash().Hex())
	}
	return nil
}

func ensureExchangeApprovals(ctx context.Context, ctf ApprovalContract, collateral AllowanceContract, backend ApprovalBackend, s signer.Signer, operators []common.Address, opts *ApprovalOptions) error {
	for _, operator := range operators {
		if err := EnsureApproval(ctx, ctf, backend, s, operator, opts); err != nil {
			return err
		}
		if err := EnsureAllowance(ctx, collateral, backend, s, operator, opts); err != nil {
			return err
		}
	}
	return nil
}

// EnsureTradingApproval makes the chain's exchange contracts ERC-1155
// operators on the conditional tokens and grants them a collateral allowance,
// using a live provider. The neg-risk exchange is covered when the chain has
// one configured.
func (c *TradingClient) EnsureTradingApproval(ctx context.Context, provider *chainio.Provider, opts *ApprovalOptions) error {
	if !IsExchangeConfigValid(c.contractConfig) {
		return types.ErrConfigUnsupported
	}

	ctf, err := NewERC1155Approval(common.HexToAddress(c.contractConfig.ConditionalTokens), provider.Backend())
	if err != nil {
		return err
	}
	collateral, err := NewERC20Allowance(common.HexToAddress(c.contractConfig.Collateral), provider.Backend())
	if err != nil {
		return err
	}

	operators := []common.Address{common.HexToAddress(c.contractConfig.Exchange)}
	if c.contractConfig.NegRiskExchange != "" {
		operators = append(operators, common.HexToAddress(c.contractConfig.NegRiskExchange))
	}
	return ensureExchangeApprovals(ctx, ctf, collateral, provider, c.signer, operators, opts)
}

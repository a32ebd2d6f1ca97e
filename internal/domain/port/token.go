package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Token is the fungible token transfer/allowance protocol.
// Implementations are untrusted: any call may run arbitrary code,
// including calls back into the component that invoked it.
type Token interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*uint256.Int, error)
	// Transfer moves amount from the caller's own balance.
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	// TransferFrom moves amount out of from's balance, spending the
	// allowance from granted to spender.
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error
	// Approve sets (not adds to) the allowance owner grants spender.
	Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error
}

// TokenRegistry resolves token addresses.
type TokenRegistry interface {
	Token(addr common.Address) (Token, error)
}

// NativeAsset is the chain's native coin.
type NativeAsset interface {
	BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error)
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
}

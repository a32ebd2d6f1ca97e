package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
)

// Ledger is the custody ledger for the accepted asset
type Ledger interface {
	Address() common.Address
	Asset() common.Address
	Deposit(ctx context.Context, call entity.Call, amount *uint256.Int) error
	Withdraw(ctx context.Context, call entity.Call, amount *uint256.Int) error
	BalanceOf(ctx context.Context, account common.Address) (*uint256.Int, error)
	History(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error)
	Reserves(ctx context.Context) (*entity.Reserves, error)
}

// SwapGateway relays swaps to the router
type SwapGateway interface {
	Address() common.Address
	Swap(ctx context.Context, call entity.Call, req entity.SwapRequest) (*entity.SwapResult, error)
}

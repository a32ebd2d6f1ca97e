package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
)

// Router is the external exchange router. Every swap either delivers at
// least amountOutMin of path[len(path)-1] to `to` and returns the amount
// produced at each hop, or fails without effect.
type Router interface {
	Address() common.Address
	GetAmountsOut(ctx context.Context, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error)
	// SwapExactTokensForTokens pulls amountIn of path[0] from call.Sender
	// using the allowance granted to the router.
	SwapExactTokensForTokens(ctx context.Context, call entity.Call, amountIn, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error)
	// SwapExactETHForTokens collects call.Value of native coin from call.Sender.
	SwapExactETHForTokens(ctx context.Context, call entity.Call, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error)
	// SwapExactTokensForETH delivers native coin to `to`.
	SwapExactTokensForETH(ctx context.Context, call entity.Call, amountIn, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error)
}

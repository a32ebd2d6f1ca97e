package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// SwapGateway relays swaps to the router on behalf of a beneficiary. It
// holds input funds only for the duration of one swap and never touches
// the output, which the router sends to the beneficiary directly.
type SwapGateway struct {
	address  common.Address
	accepted common.Address
	assets   entity.Assets
	tokens   port.TokenRegistry
	native   port.NativeAsset
	router   port.Router
	guard    guard
}

// NewSwapGateway creates a gateway acting from the account address.
func NewSwapGateway(
	address common.Address,
	accepted common.Address,
	assets entity.Assets,
	tokens port.TokenRegistry,
	native port.NativeAsset,
	router port.Router,
) *SwapGateway {
	return &SwapGateway{
		address:  address,
		accepted: accepted,
		assets:   assets,
		tokens:   tokens,
		native:   native,
		router:   router,
	}
}

// Address returns the gateway's account.
func (g *SwapGateway) Address() common.Address {
	return g.address
}

// AcceptedAsset returns the asset the ledger custodies.
func (g *SwapGateway) AcceptedAsset() common.Address {
	return g.accepted
}

// Swap converts req.AmountIn of req.AssetIn into at least
// req.MinAmountOut of req.AssetOut for req.Beneficiary.
//
// Validation failures return before any funds move. Failures after the
// input has been pulled rely on the executor to undo the pull.
func (g *SwapGateway) Swap(ctx context.Context, call entity.Call, req entity.SwapRequest) (*entity.SwapResult, error) {
	if call.Time.After(req.Deadline) {
		return nil, fmt.Errorf("%w: deadline %s is before %s", entity.ErrExpired, req.Deadline.UTC(), call.Time.UTC())
	}
	if err := req.ValidateAmounts(); err != nil {
		return nil, err
	}
	if err := req.ValidateRoute(g.assets); err != nil {
		return nil, err
	}

	nativeIn := g.assets.IsNative(req.AssetIn)
	nativeOut := g.assets.IsNative(req.AssetOut)

	var tokenIn port.Token
	if nativeIn {
		if call.Value == nil || !call.Value.Eq(req.AmountIn) {
			return nil, fmt.Errorf("%w: attached %s, amountIn %s", entity.ErrValueMismatch, valueString(call.Value), req.AmountIn.Dec())
		}
	} else {
		if call.HasValue() {
			return nil, fmt.Errorf("%w: attached %s to a token swap", entity.ErrValueMismatch, call.Value.Dec())
		}
		token, err := g.tokens.Token(req.AssetIn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrInvalidRoute, err)
		}
		tokenIn = token
	}
	if !nativeOut {
		if _, err := g.tokens.Token(req.AssetOut); err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrInvalidRoute, err)
		}
	}

	leave, err := g.guard.enter("swap")
	if err != nil {
		return nil, err
	}
	defer leave()

	var amounts []*uint256.Int
	if nativeIn {
		amounts, err = g.swapNative(ctx, call, req)
		if err != nil {
			return nil, err
		}
	} else {
		amounts, err = g.swapToken(ctx, call, tokenIn, req, nativeOut)
		if err != nil {
			return nil, err
		}
	}

	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: router reported no amounts", entity.ErrSwapFailed)
	}
	out := amounts[len(amounts)-1]
	if out == nil || out.Lt(req.MinAmountOut) {
		return nil, fmt.Errorf("%w: router reported %s, minimum %s", entity.ErrSwapFailed, valueString(out), req.MinAmountOut.Dec())
	}

	return &entity.SwapResult{
		Amounts:   amounts,
		AmountOut: out.Clone(),
	}, nil
}

// swapNative forwards the attached value to the router. The executor
// has already credited it to the gateway.
func (g *SwapGateway) swapNative(ctx context.Context, call entity.Call, req entity.SwapRequest) ([]*uint256.Int, error) {
	held, err := g.native.BalanceOf(ctx, g.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}
	if held.Lt(req.AmountIn) {
		return nil, fmt.Errorf("%w: attached value was not received", entity.ErrValueMismatch)
	}

	amounts, err := g.router.SwapExactETHForTokens(ctx,
		call.Nested(g.address, req.AmountIn),
		req.MinAmountOut, req.Path, req.Beneficiary, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSwapFailed, err)
	}

	left, err := g.native.BalanceOf(ctx, g.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}
	if want := new(uint256.Int).Sub(held, req.AmountIn); left.Gt(want) {
		return nil, fmt.Errorf("%w: router left %s of the input with the gateway", entity.ErrSwapFailed, new(uint256.Int).Sub(left, want).Dec())
	}
	return amounts, nil
}

// swapToken pulls the input token, grants the router an allowance of
// exactly AmountIn for this call and clears whatever the router left of
// it afterwards.
func (g *SwapGateway) swapToken(ctx context.Context, call entity.Call, token port.Token, req entity.SwapRequest, nativeOut bool) ([]*uint256.Int, error) {
	held, err := token.BalanceOf(ctx, g.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}

	if err := token.TransferFrom(ctx, g.address, call.Sender, g.address, req.AmountIn); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}

	router := g.router.Address()
	if err := token.Approve(ctx, g.address, router, req.AmountIn); err != nil {
		return nil, fmt.Errorf("%w: approve router: %w", entity.ErrTransferFailed, err)
	}

	nested := call.Nested(g.address, nil)
	var amounts []*uint256.Int
	if nativeOut {
		amounts, err = g.router.SwapExactTokensForETH(ctx, nested,
			req.AmountIn, req.MinAmountOut, req.Path, req.Beneficiary, req.Deadline)
	} else {
		amounts, err = g.router.SwapExactTokensForTokens(ctx, nested,
			req.AmountIn, req.MinAmountOut, req.Path, req.Beneficiary, req.Deadline)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSwapFailed, err)
	}

	residual, err := token.Allowance(ctx, g.address, router)
	if err != nil {
		return nil, fmt.Errorf("%w: read router allowance: %w", entity.ErrTransferFailed, err)
	}
	if !residual.IsZero() {
		if err := token.Approve(ctx, g.address, router, new(uint256.Int)); err != nil {
			return nil, fmt.Errorf("%w: revoke router allowance: %w", entity.ErrTransferFailed, err)
		}
	}

	left, err := token.BalanceOf(ctx, g.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}
	if left.Gt(held) {
		return nil, fmt.Errorf("%w: router left %s of the input with the gateway", entity.ErrSwapFailed, new(uint256.Int).Sub(left, held).Dec())
	}
	return amounts, nil
}

func valueString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

var _ port.SwapGateway = (*SwapGateway)(nil)

package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/infrastructure/chain"
	"custodian.io/internal/infrastructure/logger"
)

const feeDenominator = 10_000

// DefaultFeeBps is the swap fee charged on each hop, in basis points.
const DefaultFeeBps = 30

// AMM is a constant product (x*y=k) router over pools it holds the
// reserves of. Swaps are exact-input and may span several pools.
//
// Reserves on the wrapped-native side of a pool are backed by the
// router's wrapped token balance and its native coin together: native
// input is kept as coin, native output is paid in coin.
//
// Seeding mints a wrapped-native reserve to the router twice, once as
// wrapped tokens and once as coin, so the wrapped token's total supply
// overstates what is wrapped. Native input grows the wrapped-native
// reserve without growing the router's wrapped token balance, so a long
// run of wrapped-token-out swaps can fail with chain.ErrInsufficientFunds
// while the pool reserve still covers them.
type AMM struct {
	address common.Address
	wrapped common.Address
	feeBps  uint64
	tokens  port.TokenRegistry
	native  port.NativeAsset
	journal *chain.Journal
	logger  logger.Logger

	mu    sync.RWMutex
	pools map[poolKey]*pool
}

var _ port.Router = (*AMM)(nil)

type poolKey [2]common.Address

type pool struct {
	reserves map[common.Address]*uint256.Int
}

func keyOf(a, b common.Address) poolKey {
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	return poolKey{a, b}
}

// Config holds the router's fixed parameters
type Config struct {
	Address       common.Address
	WrappedNative common.Address
	FeeBps        uint64
}

// NewAMM creates a router with no pools
func NewAMM(
	cfg Config,
	tokens port.TokenRegistry,
	native port.NativeAsset,
	journal *chain.Journal,
	logger logger.Logger,
) *AMM {
	if cfg.FeeBps >= feeDenominator {
		cfg.FeeBps = DefaultFeeBps
	}
	return &AMM{
		address: cfg.Address,
		wrapped: cfg.WrappedNative,
		feeBps:  cfg.FeeBps,
		tokens:  tokens,
		native:  native,
		journal: journal,
		logger:  logger,
		pools:   make(map[poolKey]*pool),
	}
}

func (a *AMM) Address() common.Address {
	return a.address
}

// AddLiquidity grows the reserves of the pool for (assetA, assetB),
// creating it if needed. The router must already hold the funds.
func (a *AMM) AddLiquidity(_ context.Context, assetA, assetB common.Address, amountA, amountB *uint256.Int) error {
	if assetA == assetB {
		return fmt.Errorf("%w: identical assets", ErrInvalidPath)
	}
	if amountA.IsZero() || amountB.IsZero() {
		return fmt.Errorf("%w: liquidity must be positive", ErrInsufficientInputAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := keyOf(assetA, assetB)
	p, ok := a.pools[key]
	if !ok {
		p = &pool{reserves: map[common.Address]*uint256.Int{
			assetA: new(uint256.Int),
			assetB: new(uint256.Int),
		}}
		a.pools[key] = p
		a.journal.Record(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.pools, key)
		})
	}

	reserveA, overflowA := new(uint256.Int).AddOverflow(p.reserves[assetA], amountA)
	reserveB, overflowB := new(uint256.Int).AddOverflow(p.reserves[assetB], amountB)
	if overflowA || overflowB {
		return ErrOverflow
	}
	a.setReserveLocked(p, assetA, reserveA)
	a.setReserveLocked(p, assetB, reserveB)
	return nil
}

// Reserves returns the reserves of the pool (assetIn, assetOut) in that order.
func (a *AMM) Reserves(assetIn, assetOut common.Address) (*uint256.Int, *uint256.Int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reservesLocked(assetIn, assetOut)
}

// GetAmountsOut quotes every hop of path for amountIn.
func (a *AMM) GetAmountsOut(_ context.Context, amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.amountsOutLocked(amountIn, path)
}

func (a *AMM) SwapExactTokensForTokens(ctx context.Context, call entity.Call, amountIn, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error) {
	if err := checkDeadline(call, deadline); err != nil {
		return nil, err
	}
	amounts, err := a.quote(amountIn, amountOutMin, path)
	if err != nil {
		return nil, err
	}
	if err := a.pullToken(ctx, call, path[0], amounts[0]); err != nil {
		return nil, err
	}
	if err := a.applyHops(amounts, path); err != nil {
		return nil, err
	}
	if err := a.payToken(ctx, path[len(path)-1], to, amounts[len(amounts)-1]); err != nil {
		return nil, err
	}
	a.logSwap(ctx, call, path, amounts, to)
	return amounts, nil
}

func (a *AMM) SwapExactETHForTokens(ctx context.Context, call entity.Call, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error) {
	if err := checkDeadline(call, deadline); err != nil {
		return nil, err
	}
	if len(path) == 0 || path[0] != a.wrapped {
		return nil, fmt.Errorf("%w: native input must start at the wrapped native token", ErrInvalidPath)
	}
	if !call.HasValue() {
		return nil, ErrInsufficientInputAmount
	}
	amounts, err := a.quote(call.Value, amountOutMin, path)
	if err != nil {
		return nil, err
	}
	if err := a.native.Transfer(ctx, call.Sender, a.address, call.Value); err != nil {
		return nil, fmt.Errorf("router: collect native input: %w", err)
	}
	if err := a.applyHops(amounts, path); err != nil {
		return nil, err
	}
	if err := a.payToken(ctx, path[len(path)-1], to, amounts[len(amounts)-1]); err != nil {
		return nil, err
	}
	a.logSwap(ctx, call, path, amounts, to)
	return amounts, nil
}

func (a *AMM) SwapExactTokensForETH(ctx context.Context, call entity.Call, amountIn, amountOutMin *uint256.Int, path []common.Address, to common.Address, deadline time.Time) ([]*uint256.Int, error) {
	if err := checkDeadline(call, deadline); err != nil {
		return nil, err
	}
	if len(path) == 0 || path[len(path)-1] != a.wrapped {
		return nil, fmt.Errorf("%w: native output must end at the wrapped native token", ErrInvalidPath)
	}
	amounts, err := a.quote(amountIn, amountOutMin, path)
	if err != nil {
		return nil, err
	}
	if err := a.pullToken(ctx, call, path[0], amounts[0]); err != nil {
		return nil, err
	}
	if err := a.applyHops(amounts, path); err != nil {
		return nil, err
	}
	if err := a.native.Transfer(ctx, a.address, to, amounts[len(amounts)-1]); err != nil {
		return nil, fmt.Errorf("router: pay native output: %w", err)
	}
	a.logSwap(ctx, call, path, amounts, to)
	return amounts, nil
}

func checkDeadline(call entity.Call, deadline time.Time) error {
	if call.Time.After(deadline) {
		return ErrExpired
	}
	return nil
}

func (a *AMM) quote(amountIn, amountOutMin *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	a.mu.RLock()
	amounts, err := a.amountsOutLocked(amountIn, path)
	a.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if out := amounts[len(amounts)-1]; out.Lt(amountOutMin) {
		return nil, fmt.Errorf("%w: %s below minimum %s", ErrInsufficientOutputAmount, out.Dec(), amountOutMin.Dec())
	}
	return amounts, nil
}

func (a *AMM) pullToken(ctx context.Context, call entity.Call, asset common.Address, amount *uint256.Int) error {
	token, err := a.tokens.Token(asset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if err := token.TransferFrom(ctx, a.address, call.Sender, a.address, amount); err != nil {
		return fmt.Errorf("router: collect input: %w", err)
	}
	return nil
}

func (a *AMM) payToken(ctx context.Context, asset, to common.Address, amount *uint256.Int) error {
	token, err := a.tokens.Token(asset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if err := token.Transfer(ctx, a.address, to, amount); err != nil {
		return fmt.Errorf("router: pay output: %w", err)
	}
	return nil
}

// applyHops moves each hop's input into its pool and its output out.
func (a *AMM) applyHops(amounts []*uint256.Int, path []common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < len(path)-1; i++ {
		p, ok := a.pools[keyOf(path[i], path[i+1])]
		if !ok {
			return fmt.Errorf("%w: %s/%s", ErrPoolNotFound, path[i].Hex(), path[i+1].Hex())
		}
		reserveIn, overflow := new(uint256.Int).AddOverflow(p.reserves[path[i]], amounts[i])
		if overflow {
			return ErrOverflow
		}
		reserveOut := p.reserves[path[i+1]]
		if amounts[i+1].Gt(reserveOut) {
			return ErrInsufficientLiquidity
		}
		a.setReserveLocked(p, path[i], reserveIn)
		a.setReserveLocked(p, path[i+1], new(uint256.Int).Sub(reserveOut, amounts[i+1]))
	}
	return nil
}

func (a *AMM) amountsOutLocked(amountIn *uint256.Int, path []common.Address) ([]*uint256.Int, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets", ErrInvalidPath)
	}
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	amounts := make([]*uint256.Int, len(path))
	amounts[0] = amountIn.Clone()
	// Each hop is priced on the reserves left by the hops before it, so
	// a path through the same pool twice sees its own first trade.
	working := make(map[poolKey]map[common.Address]*uint256.Int)
	for i := 0; i < len(path)-1; i++ {
		reserves, err := a.workingReservesLocked(working, path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		reserveIn, reserveOut := reserves[path[i]], reserves[path[i+1]]
		out, err := a.amountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
		if _, overflow := reserveIn.AddOverflow(reserveIn, amounts[i]); overflow {
			return nil, ErrOverflow
		}
		reserveOut.Sub(reserveOut, out)
		amounts[i+1] = out
	}
	return amounts, nil
}

// workingReservesLocked returns a private copy of the pool's reserves,
// shared by every hop of one quote.
func (a *AMM) workingReservesLocked(working map[poolKey]map[common.Address]*uint256.Int, assetIn, assetOut common.Address) (map[common.Address]*uint256.Int, error) {
	key := keyOf(assetIn, assetOut)
	if reserves, ok := working[key]; ok {
		return reserves, nil
	}
	reserveIn, reserveOut, err := a.reservesLocked(assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	reserves := map[common.Address]*uint256.Int{assetIn: reserveIn, assetOut: reserveOut}
	working[key] = reserves
	return reserves, nil
}

// amountOut is the constant product output for amountIn after the fee:
// out = in*(1-fee)*rOut / (rIn + in*(1-fee))
func (a *AMM) amountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	inWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, uint256.NewInt(feeDenominator-a.feeBps))
	if overflow {
		return nil, ErrOverflow
	}
	numerator, overflow := new(uint256.Int).MulOverflow(inWithFee, reserveOut)
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(reserveIn, uint256.NewInt(feeDenominator))
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = denominator.AddOverflow(denominator, inWithFee); overflow {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Div(numerator, denominator), nil
}

func (a *AMM) reservesLocked(assetIn, assetOut common.Address) (*uint256.Int, *uint256.Int, error) {
	p, ok := a.pools[keyOf(assetIn, assetOut)]
	if !ok || assetIn == assetOut {
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrPoolNotFound, assetIn.Hex(), assetOut.Hex())
	}
	return p.reserves[assetIn].Clone(), p.reserves[assetOut].Clone(), nil
}

func (a *AMM) setReserveLocked(p *pool, asset common.Address, reserve *uint256.Int) {
	prev := p.reserves[asset]
	p.reserves[asset] = reserve
	a.journal.Record(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		p.reserves[asset] = prev
	})
}

func (a *AMM) logSwap(ctx context.Context, call entity.Call, path []common.Address, amounts []*uint256.Int, to common.Address) {
	a.logger.LogInfo(ctx, "Swap executed",
		"sender", call.Sender.Hex(),
		"to", to.Hex(),
		"asset_in", path[0].Hex(),
		"asset_out", path[len(path)-1].Hex(),
		"amount_in", amounts[0].Dec(),
		"amount_out", amounts[len(amounts)-1].Dec(),
		"hops", len(path)-1)
}

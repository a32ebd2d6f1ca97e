package entity

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SwapRequest is validated, forwarded to the router and discarded.
type SwapRequest struct {
	Beneficiary  common.Address
	AmountIn     *uint256.Int
	AssetIn      common.Address
	AssetOut     common.Address
	Path         []common.Address
	MinAmountOut *uint256.Int
	Deadline     time.Time
}

// SwapResult reports what the router says it delivered.
type SwapResult struct {
	Amounts   []*uint256.Int
	AmountOut *uint256.Int
}

// Assets identifies the native coin and its wrapped token. The router
// only knows tokens, so a native end of a swap is routed through the
// wrapped token.
type Assets struct {
	Native        common.Address
	WrappedNative common.Address
}

// IsNative reports whether asset is the native coin sentinel.
func (a Assets) IsNative(asset common.Address) bool {
	return asset == a.Native
}

func (a Assets) routed(asset common.Address) common.Address {
	if a.IsNative(asset) {
		return a.WrappedNative
	}
	return asset
}

// ValidateAmounts checks that both amounts are strictly positive.
func (r *SwapRequest) ValidateAmounts() error {
	if r.AmountIn == nil || r.AmountIn.IsZero() {
		return fmt.Errorf("%w: amountIn must be positive", ErrInvalidAmount)
	}
	if r.MinAmountOut == nil || r.MinAmountOut.IsZero() {
		return fmt.Errorf("%w: minAmountOut must be positive", ErrInvalidAmount)
	}
	return nil
}

// ValidateRoute checks the beneficiary and that the path starts at the
// input asset and ends at the output asset.
func (r *SwapRequest) ValidateRoute(assets Assets) error {
	if r.Beneficiary == (common.Address{}) {
		return fmt.Errorf("%w: beneficiary is the zero address", ErrInvalidRoute)
	}
	if len(r.Path) < 2 {
		return fmt.Errorf("%w: path needs at least 2 assets, got %d", ErrInvalidRoute, len(r.Path))
	}
	if assets.IsNative(r.AssetIn) && assets.IsNative(r.AssetOut) {
		return fmt.Errorf("%w: native to native", ErrInvalidRoute)
	}
	for i, hop := range r.Path {
		if hop == (common.Address{}) {
			return fmt.Errorf("%w: path[%d] is the zero address", ErrInvalidRoute, i)
		}
		if assets.IsNative(hop) {
			return fmt.Errorf("%w: path[%d] is the native asset", ErrInvalidRoute, i)
		}
		if i > 0 && r.Path[i-1] == hop {
			return fmt.Errorf("%w: path[%d] repeats %s", ErrInvalidRoute, i, hop.Hex())
		}
	}
	if first := r.Path[0]; first != assets.routed(r.AssetIn) {
		return fmt.Errorf("%w: path starts at %s, assetIn is %s", ErrInvalidRoute, first.Hex(), r.AssetIn.Hex())
	}
	if last := r.Path[len(r.Path)-1]; last != assets.routed(r.AssetOut) {
		return fmt.Errorf("%w: path ends at %s, assetOut is %s", ErrInvalidRoute, last.Hex(), r.AssetOut.Hex())
	}
	return nil
}

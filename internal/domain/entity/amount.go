package entity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// AssetInfo describes how to present an asset's amounts
type AssetInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// FormatUnits renders amount in whole units of an asset with the given
// number of decimals, e.g. 70000000 with 6 decimals is "70.000000".
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	if amount == nil {
		amount = new(uint256.Int)
	}
	return decimal.NewFromBigInt(amount.ToBig(), -int32(decimals)).StringFixed(int32(decimals))
}

// ParseUnits converts a human amount such as "70.5" into the smallest
// unit of an asset with the given number of decimals.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	amount, overflow := uint256.FromBig(shifted.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	return amount, nil
}

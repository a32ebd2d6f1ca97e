package chain

import "errors"

var (
	ErrInsufficientFunds     = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrZeroAddress           = errors.New("transfer to the zero address")
	ErrSupplyOverflow        = errors.New("supply overflow")
)

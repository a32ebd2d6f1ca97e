package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ParseAddress parses a 0x-prefixed hex account or asset identifier.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a base-10 amount in the asset's smallest unit.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return amount, nil
}

// Call carries the context of one invocation: who is calling, how much
// native value came with it, and the block time it executes at.
type Call struct {
	TxID   string
	Sender common.Address
	Value  *uint256.Int
	Time   time.Time
}

// HasValue reports whether native value is attached.
func (c Call) HasValue() bool {
	return c.Value != nil && !c.Value.IsZero()
}

// Nested returns the call seen by a collaborator invoked by sender
// inside the same unit of work.
func (c Call) Nested(sender common.Address, value *uint256.Int) Call {
	return Call{TxID: c.TxID, Sender: sender, Value: value, Time: c.Time}
}

// Tx describes a top-level transaction submitted to the executor.
type Tx struct {
	From  common.Address
	To    common.Address
	Value *uint256.Int
}

// Receipt is returned for a committed transaction.
type Receipt struct {
	TxID  string         `json:"txId"`
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value string         `json:"value"`
	Time  time.Time      `json:"time"`
}

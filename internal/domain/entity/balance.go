package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EntryKind distinguishes ledger movements
type EntryKind string

const (
	EntryDeposit  EntryKind = "deposit"
	EntryWithdraw EntryKind = "withdraw"
)

// LedgerEntry represents a single movement of a recorded balance
type LedgerEntry struct {
	TxID         string
	Account      common.Address
	Kind         EntryKind
	Amount       *uint256.Int
	BalanceAfter *uint256.Int
	Time         time.Time
}

// BalanceResponse represents the recorded balance of an account
type BalanceResponse struct {
	Account   string `json:"account"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
}

// Reserves compares what the ledger owes with what it holds.
type Reserves struct {
	Asset    common.Address
	Recorded *uint256.Int
	Held     *uint256.Int
	Surplus  *uint256.Int
}

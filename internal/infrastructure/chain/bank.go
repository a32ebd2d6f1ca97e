package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/port"
)

// Bank keeps native coin balances
type Bank struct {
	mu       sync.RWMutex
	journal  *Journal
	balances map[common.Address]*uint256.Int
}

var _ port.NativeAsset = (*Bank)(nil)

// NewBank creates an empty native coin bank
func NewBank(journal *Journal) *Bank {
	return &Bank{
		journal:  journal,
		balances: make(map[common.Address]*uint256.Int),
	}
}

// BalanceOf returns the native balance of owner
func (b *Bank) BalanceOf(_ context.Context, owner common.Address) (*uint256.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balanceLocked(owner), nil
}

// Transfer moves native coin between accounts
func (b *Bank) Transfer(_ context.Context, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("native: %w", ErrZeroAddress)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance := b.balanceLocked(from)
	if amount.Gt(fromBalance) {
		return fmt.Errorf("native: %w: %s has %s, needs %s", ErrInsufficientFunds, from.Hex(), fromBalance.Dec(), amount.Dec())
	}
	b.setLocked(from, new(uint256.Int).Sub(fromBalance, amount))
	b.setLocked(to, new(uint256.Int).Add(b.balanceLocked(to), amount))
	return nil
}

// Mint credits new native coin to an account
func (b *Bank) Mint(_ context.Context, to common.Address, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, overflow := new(uint256.Int).AddOverflow(b.balanceLocked(to), amount)
	if overflow {
		return fmt.Errorf("native: %w", ErrSupplyOverflow)
	}
	b.setLocked(to, balance)
	return nil
}

func (b *Bank) balanceLocked(owner common.Address) *uint256.Int {
	if balance, ok := b.balances[owner]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

func (b *Bank) setLocked(owner common.Address, balance *uint256.Int) {
	prev, existed := b.balances[owner]
	b.balances[owner] = balance
	b.journal.Record(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existed {
			b.balances[owner] = prev
		} else {
			delete(b.balances, owner)
		}
	})
}

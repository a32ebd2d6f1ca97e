package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/infrastructure/chain"
	"custodian.io/internal/infrastructure/logger"
)

// InMemoryLedger implements the BalanceRepository port
type InMemoryLedger struct {
	mu       sync.RWMutex
	journal  *chain.Journal
	balances map[common.Address]*uint256.Int
	total    *uint256.Int
	entries  []entity.LedgerEntry
	logger   logger.Logger
}

// NewInMemoryLedger creates a new in-memory ledger whose changes are
// recorded in journal
func NewInMemoryLedger(journal *chain.Journal, logger logger.Logger) port.BalanceRepository {
	return &InMemoryLedger{
		journal:  journal,
		balances: make(map[common.Address]*uint256.Int),
		total:    new(uint256.Int),
		entries:  make([]entity.LedgerEntry, 0),
		logger:   logger,
	}
}

// AddEntry applies a ledger entry to the account balance
func (l *InMemoryLedger) AddEntry(ctx context.Context, entry entity.LedgerEntry) (*uint256.Int, error) {
	if entry.Amount == nil {
		return nil, fmt.Errorf("%w: missing amount", entity.ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currentBalance := l.balanceLocked(entry.Account)

	var (
		newBalance *uint256.Int
		newTotal   *uint256.Int
		overflow   bool
	)
	switch entry.Kind {
	case entity.EntryDeposit:
		newBalance, overflow = new(uint256.Int).AddOverflow(currentBalance, entry.Amount)
		if !overflow {
			newTotal, overflow = new(uint256.Int).AddOverflow(l.total, entry.Amount)
		}
		if overflow {
			return nil, fmt.Errorf("%w: balance would overflow", entity.ErrInvalidAmount)
		}
	case entity.EntryWithdraw:
		if entry.Amount.Gt(currentBalance) {
			l.logger.LogError(ctx, "Failed to debit balance", entity.ErrInsufficientBalance,
				"account", entry.Account.Hex(),
				"current", currentBalance.Dec(),
				"amount", entry.Amount.Dec())
			return nil, fmt.Errorf("%w: requested %s, recorded %s", entity.ErrInsufficientBalance, entry.Amount.Dec(), currentBalance.Dec())
		}
		newBalance = new(uint256.Int).Sub(currentBalance, entry.Amount)
		newTotal = new(uint256.Int).Sub(l.total, entry.Amount)
	default:
		return nil, fmt.Errorf("unknown entry kind %q", entry.Kind)
	}

	// Update balance
	prevBalance, existed := l.balances[entry.Account]
	prevTotal := l.total
	l.balances[entry.Account] = newBalance
	l.total = newTotal

	// Add to audit trail
	entry.Amount = entry.Amount.Clone()
	entry.BalanceAfter = newBalance.Clone()
	l.entries = append(l.entries, entry)
	count := len(l.entries) - 1

	l.journal.Record(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if existed {
			l.balances[entry.Account] = prevBalance
		} else {
			delete(l.balances, entry.Account)
		}
		l.total = prevTotal
		l.entries = l.entries[:count]
	})

	l.logger.LogInfo(ctx, "Balance updated",
		"account", entry.Account.Hex(),
		"kind", string(entry.Kind),
		"amount", entry.Amount.Dec(),
		"new_balance", newBalance.Dec())

	return newBalance.Clone(), nil
}

// GetBalance returns the recorded balance for an account
func (l *InMemoryLedger) GetBalance(_ context.Context, account common.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(account), nil
}

// TotalRecorded returns the sum of all balances
func (l *InMemoryLedger) TotalRecorded(_ context.Context) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total.Clone(), nil
}

// History returns the entries of one account, oldest first
func (l *InMemoryLedger) History(_ context.Context, account common.Address) ([]entity.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Copy to avoid handing out the audit trail itself
	history := make([]entity.LedgerEntry, 0)
	for _, entry := range l.entries {
		if entry.Account == account {
			entry.Amount = cloneAmount(entry.Amount)
			entry.BalanceAfter = cloneAmount(entry.BalanceAfter)
			history = append(history, entry)
		}
	}
	return history, nil
}

func (l *InMemoryLedger) balanceLocked(account common.Address) *uint256.Int {
	if balance, ok := l.balances[account]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

func cloneAmount(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return nil
	}
	return amount.Clone()
}

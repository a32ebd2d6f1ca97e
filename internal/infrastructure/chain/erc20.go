package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/port"
)

// MaxAllowance is never decremented by TransferFrom.
var MaxAllowance = new(uint256.Int).SetAllOne()

// ERC20 is an in-memory fungible token with standard
// transfer/approve/transferFrom semantics.
type ERC20 struct {
	address  common.Address
	symbol   string
	decimals uint8

	mu          sync.RWMutex
	journal     *Journal
	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
}

var _ port.Token = (*ERC20)(nil)

// NewERC20 creates a token with no supply
func NewERC20(address common.Address, symbol string, decimals uint8, journal *Journal) *ERC20 {
	return &ERC20{
		address:     address,
		symbol:      symbol,
		decimals:    decimals,
		journal:     journal,
		totalSupply: new(uint256.Int),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

// Address returns the token contract address
func (t *ERC20) Address() common.Address { return t.address }

// Symbol returns the ticker, e.g. USDC
func (t *ERC20) Symbol() string { return t.symbol }

// Decimals returns the number of decimals of one whole unit
func (t *ERC20) Decimals() uint8 { return t.decimals }

// TotalSupply returns the amount minted so far
func (t *ERC20) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalSupply.Clone()
}

// BalanceOf returns the token balance of owner
func (t *ERC20) BalanceOf(_ context.Context, owner common.Address) (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balanceLocked(owner), nil
}

// Allowance returns how much spender may still pull from owner
func (t *ERC20) Allowance(_ context.Context, owner, spender common.Address) (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowanceLocked(owner, spender), nil
}

// Transfer moves amount from from to to
func (t *ERC20) Transfer(_ context.Context, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.moveLocked(from, to, amount)
}

// TransferFrom moves amount from from to to on behalf of spender,
// spending spender's allowance
func (t *ERC20) TransferFrom(_ context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowance := t.allowanceLocked(from, spender)
	if amount.Gt(allowance) {
		return fmt.Errorf("%s: %w: %s approved %s for %s, needs %s",
			t.symbol, ErrInsufficientAllowance, from.Hex(), allowance.Dec(), spender.Hex(), amount.Dec())
	}
	if err := t.moveLocked(from, to, amount); err != nil {
		return err
	}
	if !allowance.Eq(MaxAllowance) {
		t.setAllowanceLocked(from, spender, new(uint256.Int).Sub(allowance, amount))
	}
	return nil
}

// Approve sets the allowance of spender over owner's tokens
func (t *ERC20) Approve(_ context.Context, owner, spender common.Address, amount *uint256.Int) error {
	if spender == (common.Address{}) {
		return fmt.Errorf("%s: approve to the zero address", t.symbol)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowanceLocked(owner, spender, amount.Clone())
	return nil
}

// Mint creates amount new tokens for to
func (t *ERC20) Mint(_ context.Context, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%s: mint %w", t.symbol, ErrZeroAddress)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(t.totalSupply, amount)
	if overflow {
		return fmt.Errorf("%s: %w", t.symbol, ErrSupplyOverflow)
	}
	prevSupply := t.totalSupply
	t.totalSupply = supply
	t.journal.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.totalSupply = prevSupply
	})
	t.setBalanceLocked(to, new(uint256.Int).Add(t.balanceLocked(to), amount))
	return nil
}

func (t *ERC20) moveLocked(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%s: %w", t.symbol, ErrZeroAddress)
	}
	fromBalance := t.balanceLocked(from)
	if amount.Gt(fromBalance) {
		return fmt.Errorf("%s: %w: %s has %s, needs %s", t.symbol, ErrInsufficientFunds, from.Hex(), fromBalance.Dec(), amount.Dec())
	}
	t.setBalanceLocked(from, new(uint256.Int).Sub(fromBalance, amount))
	t.setBalanceLocked(to, new(uint256.Int).Add(t.balanceLocked(to), amount))
	return nil
}

func (t *ERC20) balanceLocked(owner common.Address) *uint256.Int {
	if balance, ok := t.balances[owner]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

func (t *ERC20) allowanceLocked(owner, spender common.Address) *uint256.Int {
	if allowance, ok := t.allowances[owner][spender]; ok {
		return allowance.Clone()
	}
	return new(uint256.Int)
}

func (t *ERC20) setBalanceLocked(owner common.Address, balance *uint256.Int) {
	prev, existed := t.balances[owner]
	t.balances[owner] = balance
	t.journal.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.balances[owner] = prev
		} else {
			delete(t.balances, owner)
		}
	})
}

func (t *ERC20) setAllowanceLocked(owner, spender common.Address, amount *uint256.Int) {
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*uint256.Int)
	}
	prev, existed := t.allowances[owner][spender]
	t.allowances[owner][spender] = amount
	t.journal.Record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.allowances[owner][spender] = prev
		} else {
			delete(t.allowances[owner], spender)
		}
	})
}

package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// Ledger holds custody of one accepted token on behalf of depositors.
//
// The accepted token must move exactly the requested amount on every
// transfer. Fee-on-transfer and rebasing tokens break the link between
// recorded and held balances and are not supported.
type Ledger struct {
	address    common.Address
	asset      port.Token
	repository port.BalanceRepository
	guard      guard
}

// NewLedger creates a ledger custodying asset from the account address.
func NewLedger(
	address common.Address,
	asset port.Token,
	repository port.BalanceRepository,
) *Ledger {
	return &Ledger{
		address:    address,
		asset:      asset,
		repository: repository,
	}
}

// Address returns the account the ledger holds funds under.
func (l *Ledger) Address() common.Address {
	return l.address
}

// Asset returns the accepted asset.
func (l *Ledger) Asset() common.Address {
	return l.asset.Address()
}

// Deposit pulls amount of the accepted asset from the caller, who must
// have approved the ledger beforehand, and credits the caller's record.
func (l *Ledger) Deposit(ctx context.Context, call entity.Call, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: deposit amount must be positive", entity.ErrInvalidAmount)
	}

	leave, err := l.guard.enter("deposit")
	if err != nil {
		return err
	}
	defer leave()

	current, err := l.repository.GetBalance(ctx, call.Sender)
	if err != nil {
		return err
	}
	if _, overflow := new(uint256.Int).AddOverflow(current, amount); overflow {
		return fmt.Errorf("%w: balance would overflow", entity.ErrInvalidAmount)
	}

	if err := l.asset.TransferFrom(ctx, l.address, call.Sender, l.address, amount); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}

	_, err = l.repository.AddEntry(ctx, entity.LedgerEntry{
		TxID:    call.TxID,
		Account: call.Sender,
		Kind:    entity.EntryDeposit,
		Amount:  amount.Clone(),
		Time:    call.Time,
	})
	return err
}

// Withdraw debits the caller's record and sends amount back to them.
// The record is debited before the transfer so a nested call made by
// the token sees the reduced balance.
func (l *Ledger) Withdraw(ctx context.Context, call entity.Call, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: withdraw amount must be positive", entity.ErrInvalidAmount)
	}

	leave, err := l.guard.enter("withdraw")
	if err != nil {
		return err
	}
	defer leave()

	current, err := l.repository.GetBalance(ctx, call.Sender)
	if err != nil {
		return err
	}
	if amount.Gt(current) {
		return fmt.Errorf("%w: requested %s, recorded %s", entity.ErrInsufficientBalance, amount.Dec(), current.Dec())
	}

	if _, err := l.repository.AddEntry(ctx, entity.LedgerEntry{
		TxID:    call.TxID,
		Account: call.Sender,
		Kind:    entity.EntryWithdraw,
		Amount:  amount.Clone(),
		Time:    call.Time,
	}); err != nil {
		return err
	}

	if err := l.asset.Transfer(ctx, l.address, call.Sender, amount); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
	}
	return nil
}

// BalanceOf returns the recorded balance of account, zero if it never
// deposited.
func (l *Ledger) BalanceOf(ctx context.Context, account common.Address) (*uint256.Int, error) {
	return l.repository.GetBalance(ctx, account)
}

// History returns the account's deposits and withdrawals, oldest first.
func (l *Ledger) History(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error) {
	return l.repository.History(ctx, account)
}

// Reserves compares the sum of all records with the ledger's actual
// holding of the accepted asset.
func (l *Ledger) Reserves(ctx context.Context) (*entity.Reserves, error) {
	recorded, err := l.repository.TotalRecorded(ctx)
	if err != nil {
		return nil, err
	}
	held, err := l.asset.BalanceOf(ctx, l.address)
	if err != nil {
		return nil, fmt.Errorf("failed to read held balance: %w", err)
	}

	reserves := &entity.Reserves{
		Asset:    l.asset.Address(),
		Recorded: recorded,
		Held:     held,
		Surplus:  new(uint256.Int),
	}
	if held.Lt(recorded) {
		return reserves, fmt.Errorf("%w: recorded %s, held %s", entity.ErrInsolvent, recorded.Dec(), held.Dec())
	}
	reserves.Surplus.Sub(held, recorded)
	return reserves, nil
}

var _ port.Ledger = (*Ledger)(nil)

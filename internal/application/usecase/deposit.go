package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// LedgerRequest asks to move amount in or out of the caller's record
type LedgerRequest struct {
	Caller common.Address
	Amount *uint256.Int
}

// LedgerResult is the outcome of a committed deposit or withdrawal
type LedgerResult struct {
	Receipt *entity.Receipt
	Balance *uint256.Int
}

// DepositUseCase handles deposits into the ledger
type DepositUseCase struct {
	executor port.Executor
	ledger   port.Ledger
}

// NewDepositUseCase creates a new DepositUseCase
func NewDepositUseCase(executor port.Executor, ledger port.Ledger) *DepositUseCase {
	return &DepositUseCase{
		executor: executor,
		ledger:   ledger,
	}
}

// Execute runs the deposit as one transaction
func (uc *DepositUseCase) Execute(ctx context.Context, req LedgerRequest) (*LedgerResult, error) {
	var balance *uint256.Int
	receipt, err := uc.executor.Execute(ctx, entity.Tx{From: req.Caller, To: uc.ledger.Address()},
		func(ctx context.Context, call entity.Call) error {
			if err := uc.ledger.Deposit(ctx, call, req.Amount); err != nil {
				return err
			}
			var err error
			balance, err = uc.ledger.BalanceOf(ctx, call.Sender)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Receipt: receipt, Balance: balance}, nil
}

package usecase

import (
	"context"

	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// WithdrawUseCase handles withdrawals from the ledger
type WithdrawUseCase struct {
	executor port.Executor
	ledger   port.Ledger
}

// NewWithdrawUseCase creates a new WithdrawUseCase
func NewWithdrawUseCase(executor port.Executor, ledger port.Ledger) *WithdrawUseCase {
	return &WithdrawUseCase{
		executor: executor,
		ledger:   ledger,
	}
}

// Execute runs the withdrawal as one transaction
func (uc *WithdrawUseCase) Execute(ctx context.Context, req LedgerRequest) (*LedgerResult, error) {
	var balance *uint256.Int
	receipt, err := uc.executor.Execute(ctx, entity.Tx{From: req.Caller, To: uc.ledger.Address()},
		func(ctx context.Context, call entity.Call) error {
			if err := uc.ledger.Withdraw(ctx, call, req.Amount); err != nil {
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

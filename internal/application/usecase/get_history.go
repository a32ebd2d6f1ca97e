package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// GetHistoryUseCase lists an account's ledger entries
type GetHistoryUseCase struct {
	executor port.Executor
	ledger   port.Ledger
}

func NewGetHistoryUseCase(executor port.Executor, ledger port.Ledger) *GetHistoryUseCase {
	return &GetHistoryUseCase{executor: executor, ledger: ledger}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error) {
	var history []entity.LedgerEntry
	err := uc.executor.View(ctx, func(ctx context.Context) error {
		var err error
		history, err = uc.ledger.History(ctx, account)
		return err
	})
	return history, err
}

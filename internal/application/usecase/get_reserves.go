package usecase

import (
	"context"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// GetReservesUseCase reports recorded against held balances
type GetReservesUseCase struct {
	executor port.Executor
	ledger   port.Ledger
}

func NewGetReservesUseCase(executor port.Executor, ledger port.Ledger) *GetReservesUseCase {
	return &GetReservesUseCase{executor: executor, ledger: ledger}
}

// Execute returns the reserves. An insolvent ledger returns both the
// reserves and entity.ErrInsolvent.
func (uc *GetReservesUseCase) Execute(ctx context.Context) (*entity.Reserves, error) {
	var reserves *entity.Reserves
	err := uc.executor.View(ctx, func(ctx context.Context) error {
		var err error
		reserves, err = uc.ledger.Reserves(ctx)
		return err
	})
	return reserves, err
}

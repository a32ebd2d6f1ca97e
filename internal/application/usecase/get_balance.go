package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// GetBalanceUseCase handles balance retrieval
type GetBalanceUseCase struct {
	executor port.Executor
	ledger   port.Ledger
	decimals uint8
}

// NewGetBalanceUseCase creates a new GetBalanceUseCase. decimals is the
// accepted asset's, used for the formatted balance.
func NewGetBalanceUseCase(executor port.Executor, ledger port.Ledger, decimals uint8) *GetBalanceUseCase {
	return &GetBalanceUseCase{
		executor: executor,
		ledger:   ledger,
		decimals: decimals,
	}
}

// Execute retrieves the recorded balance for an account
func (uc *GetBalanceUseCase) Execute(ctx context.Context, account common.Address) (*entity.BalanceResponse, error) {
	var response *entity.BalanceResponse
	err := uc.executor.View(ctx, func(ctx context.Context) error {
		balance, err := uc.ledger.BalanceOf(ctx, account)
		if err != nil {
			return err
		}
		response = &entity.BalanceResponse{
			Account:   account.Hex(),
			Balance:   balance.Dec(),
			Formatted: entity.FormatUnits(balance, uc.decimals),
		}
		return nil
	})
	return response, err
}

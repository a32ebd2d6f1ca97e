package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// SwapCommand is a swap submitted by Caller with Value of native coin
// attached
type SwapCommand struct {
	Caller  common.Address
	Value   *uint256.Int
	Request entity.SwapRequest
}

// SwapOutcome is the outcome of a committed swap
type SwapOutcome struct {
	Receipt *entity.Receipt
	Result  *entity.SwapResult
}

// SwapUseCase handles swaps through the gateway
type SwapUseCase struct {
	executor port.Executor
	gateway  port.SwapGateway
}

// NewSwapUseCase creates a new SwapUseCase
func NewSwapUseCase(executor port.Executor, gateway port.SwapGateway) *SwapUseCase {
	return &SwapUseCase{
		executor: executor,
		gateway:  gateway,
	}
}

// Execute runs the swap as one transaction
func (uc *SwapUseCase) Execute(ctx context.Context, cmd SwapCommand) (*SwapOutcome, error) {
	var result *entity.SwapResult
	tx := entity.Tx{From: cmd.Caller, To: uc.gateway.Address(), Value: cmd.Value}
	receipt, err := uc.executor.Execute(ctx, tx, func(ctx context.Context, call entity.Call) error {
		var err error
		result, err = uc.gateway.Swap(ctx, call, cmd.Request)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SwapOutcome{Receipt: receipt, Result: result}, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// ApproveRequest lets Spender pull up to Amount of Asset from Owner.
// A zero amount revokes the allowance.
type ApproveRequest struct {
	Owner   common.Address
	Asset   common.Address
	Spender common.Address
	Amount  *uint256.Int
}

// ApproveUseCase sets token allowances, which the ledger and the swap
// gateway need before they can pull funds
type ApproveUseCase struct {
	executor port.Executor
	tokens   port.TokenRegistry
}

// NewApproveUseCase creates a new ApproveUseCase
func NewApproveUseCase(executor port.Executor, tokens port.TokenRegistry) *ApproveUseCase {
	return &ApproveUseCase{
		executor: executor,
		tokens:   tokens,
	}
}

// Execute sets the allowance as one transaction
func (uc *ApproveUseCase) Execute(ctx context.Context, req ApproveRequest) (*entity.Receipt, error) {
	if req.Spender == (common.Address{}) {
		return nil, fmt.Errorf("%w: spender is the zero address", entity.ErrInvalidAddress)
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("%w: missing amount", entity.ErrInvalidAmount)
	}
	token, err := uc.tokens.Token(req.Asset)
	if err != nil {
		return nil, err
	}

	return uc.executor.Execute(ctx, entity.Tx{From: req.Owner, To: req.Asset},
		func(ctx context.Context, call entity.Call) error {
			return token.Approve(ctx, call.Sender, req.Spender, req.Amount)
		})
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian.io/internal/domain/entity"
)

func TestDepositUseCase_Execute(t *testing.T) {
	tests := []struct {
		name        string
		depositErr  error
		executorErr error
		wantErr     error
	}{
		{name: "committed"},
		{name: "ledger rejects", depositErr: entity.ErrTransferFailed, wantErr: entity.ErrTransferFailed},
		{name: "executor fails", executorErr: context.Canceled, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded *uint256.Int
			ledger := &mockLedger{
				depositFunc: func(_ context.Context, call entity.Call, amount *uint256.Int) error {
					assert.Equal(t, alice, call.Sender)
					if tt.depositErr != nil {
						return tt.depositErr
					}
					recorded = amount.Clone()
					return nil
				},
				balanceOfFunc: func(_ context.Context, account common.Address) (*uint256.Int, error) {
					return recorded.Clone(), nil
				},
			}
			executor := &mockExecutor{failErr: tt.executorErr}
			uc := NewDepositUseCase(executor, ledger)

			result, err := uc.Execute(context.Background(), LedgerRequest{Caller: alice, Amount: uint256.NewInt(60)})
			require.Len(t, executor.txs, 1)
			assert.Equal(t, entity.Tx{From: alice, To: ledgerAddress}, executor.txs[0])
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tx-1", result.Receipt.TxID)
			assert.Equal(t, uint64(60), result.Balance.Uint64())
		})
	}
}

func TestWithdrawUseCase_Execute(t *testing.T) {
	balance := uint256.NewInt(60)
	ledger := &mockLedger{
		withdrawFunc: func(_ context.Context, _ entity.Call, amount *uint256.Int) error {
			if amount.Gt(balance) {
				return entity.ErrInsufficientBalance
			}
			balance = new(uint256.Int).Sub(balance, amount)
			return nil
		},
		balanceOfFunc: func(context.Context, common.Address) (*uint256.Int, error) {
			return balance.Clone(), nil
		},
	}
	uc := NewWithdrawUseCase(&mockExecutor{}, ledger)

	result, err := uc.Execute(context.Background(), LedgerRequest{Caller: alice, Amount: uint256.NewInt(10)})
	require.NoError(t, err)
	assert.Equal(t, uint64(50), result.Balance.Uint64())

	_, err = uc.Execute(context.Background(), LedgerRequest{Caller: alice, Amount: uint256.NewInt(70)})
	assert.ErrorIs(t, err, entity.ErrInsufficientBalance)
}

func TestGetBalanceUseCase_Execute(t *testing.T) {
	ledger := &mockLedger{
		balanceOfFunc: func(context.Context, common.Address) (*uint256.Int, error) {
			return uint256.NewInt(70_000_000), nil
		},
	}
	executor := &mockExecutor{}
	uc := NewGetBalanceUseCase(executor, ledger, 6)

	response, err := uc.Execute(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, &entity.BalanceResponse{
		Account:   alice.Hex(),
		Balance:   "70000000",
		Formatted: "70.000000",
	}, response)
	assert.Equal(t, 1, executor.views)
	assert.Empty(t, executor.txs, "reads must not open a transaction")
}

func TestGetHistoryUseCase_Execute(t *testing.T) {
	entries := []entity.LedgerEntry{{TxID: "a", Account: alice, Kind: entity.EntryDeposit, Amount: uint256.NewInt(1)}}
	ledger := &mockLedger{
		historyFunc: func(_ context.Context, account common.Address) ([]entity.LedgerEntry, error) {
			return entries, nil
		},
	}

	got, err := NewGetHistoryUseCase(&mockExecutor{}, ledger).Execute(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestGetReservesUseCase_Execute(t *testing.T) {
	insolvent := &entity.Reserves{Asset: usdcAddress, Recorded: uint256.NewInt(10), Held: uint256.NewInt(9), Surplus: new(uint256.Int)}
	ledger := &mockLedger{
		reservesFunc: func(context.Context) (*entity.Reserves, error) {
			return insolvent, entity.ErrInsolvent
		},
	}

	got, err := NewGetReservesUseCase(&mockExecutor{}, ledger).Execute(context.Background())
	assert.True(t, errors.Is(err, entity.ErrInsolvent))
	assert.Same(t, insolvent, got)
}

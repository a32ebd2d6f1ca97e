package usecase

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian.io/internal/domain/entity"
)

func TestApproveUseCase_Execute(t *testing.T) {
	tests := []struct {
		name    string
		asset   common.Address
		spender common.Address
		amount  *uint256.Int
		wantErr error
		wantTx  bool
	}{
		{name: "grants allowance", asset: usdcAddress, spender: ledgerAddress, amount: uint256.NewInt(60_000_000), wantTx: true},
		{name: "zero revokes", asset: usdcAddress, spender: ledgerAddress, amount: new(uint256.Int), wantTx: true},
		{name: "zero spender", asset: usdcAddress, amount: uint256.NewInt(1), wantErr: entity.ErrInvalidAddress},
		{name: "missing amount", asset: usdcAddress, spender: ledgerAddress, wantErr: entity.ErrInvalidAmount},
		{name: "unknown token", asset: gatewayAddress, spender: ledgerAddress, amount: uint256.NewInt(1), wantErr: entity.ErrUnknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var approved *uint256.Int
			token := &mockToken{
				address: usdcAddress,
				approveFunc: func(owner, spender common.Address, amount *uint256.Int) error {
					assert.Equal(t, alice, owner)
					assert.Equal(t, tt.spender, spender)
					approved = amount
					return nil
				},
			}
			executor := &mockExecutor{}
			uc := NewApproveUseCase(executor, mockRegistry{usdcAddress: token})

			receipt, err := uc.Execute(context.Background(), ApproveRequest{
				Owner:   alice,
				Asset:   tt.asset,
				Spender: tt.spender,
				Amount:  tt.amount,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, executor.txs)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, receipt)
			require.Len(t, executor.txs, 1)
			assert.Equal(t, entity.Tx{From: alice, To: usdcAddress}, executor.txs[0])
			assert.Equal(t, tt.amount, approved)
		})
	}
}

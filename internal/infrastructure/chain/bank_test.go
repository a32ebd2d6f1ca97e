package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian.io/internal/domain/entity"
)

func TestBank_Transfer(t *testing.T) {
	ctx := context.Background()
	bank := NewBank(NewJournal())
	require.NoError(t, bank.Mint(ctx, alice, uint256.NewInt(500)))

	require.NoError(t, bank.Transfer(ctx, alice, bob, uint256.NewInt(200)))
	assert.ErrorIs(t, bank.Transfer(ctx, alice, bob, uint256.NewInt(301)), ErrInsufficientFunds)
	assert.ErrorIs(t, bank.Transfer(ctx, alice, common.Address{}, uint256.NewInt(1)), ErrZeroAddress)

	balance, _ := bank.BalanceOf(ctx, alice)
	assert.Equal(t, uint64(300), balance.Uint64())
	balance, _ = bank.BalanceOf(ctx, bob)
	assert.Equal(t, uint64(200), balance.Uint64())
}

func TestBank_MintOverflow(t *testing.T) {
	ctx := context.Background()
	bank := NewBank(NewJournal())
	require.NoError(t, bank.Mint(ctx, alice, MaxAllowance))
	assert.ErrorIs(t, bank.Mint(ctx, alice, uint256.NewInt(1)), ErrSupplyOverflow)
}

func TestRegistry(t *testing.T) {
	journal := NewJournal()
	registry := NewRegistry()
	dai := NewERC20(common.HexToAddress("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"), "DAI", 18, journal)
	usdc := NewERC20(usdcAddress, "USDC", 6, journal)
	registry.Register(dai)
	registry.Register(usdc)

	token, err := registry.Token(usdcAddress)
	require.NoError(t, err)
	assert.Equal(t, usdcAddress, token.Address())

	_, err = registry.Token(bob)
	assert.ErrorIs(t, err, entity.ErrUnknownToken)
}

package node

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/infrastructure/config"
	"custodian.io/internal/infrastructure/logger"
)

const (
	matic  = "0x0000000000000000000000000000000000001010"
	wmatic = "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"
	usdc   = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	alice  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func chainConfig() config.Chain {
	return config.Chain{
		Native:         config.Asset{Address: matic, Symbol: "MATIC", Decimals: 18},
		WrappedNative:  wmatic,
		AcceptedAsset:  usdc,
		LedgerAddress:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		GatewayAddress: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		RouterAddress:  "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506",
		RouterFeeBps:   30,
		Tokens: []config.Asset{
			{Address: wmatic, Symbol: "WMATIC", Decimals: 18},
			{Address: usdc, Symbol: "USDC", Decimals: 6},
		},
		Genesis: []config.Allocation{
			{Account: alice, Asset: matic, Amount: "10000"},
			{Account: alice, Asset: usdc, Amount: "12.5"},
		},
		Pools: []config.Pool{
			{AssetA: wmatic, AssetB: usdc, ReserveA: "1000000", ReserveB: "700000"},
		},
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	n, err := New(ctx, chainConfig(), logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "USDC", n.Accepted.Symbol)
	assert.Equal(t, uint8(6), n.Accepted.Decimals)
	assert.Len(t, n.Tokens, 2)
	assert.Zero(t, n.Journal.Len(), "genesis is committed")

	native, err := n.Bank.BalanceOf(ctx, common.HexToAddress(alice))
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000000", native.Dec())

	token, err := n.Registry.Token(common.HexToAddress(usdc))
	require.NoError(t, err)
	balance, err := token.BalanceOf(ctx, common.HexToAddress(alice))
	require.NoError(t, err)
	assert.Equal(t, "12500000", balance.Dec())

	reserveIn, reserveOut, err := n.Router.Reserves(common.HexToAddress(wmatic), common.HexToAddress(usdc))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000", reserveIn.Dec())
	assert.Equal(t, "700000000000", reserveOut.Dec())

	routerNative, _ := n.Bank.BalanceOf(ctx, n.Router.Address())
	assert.Equal(t, reserveIn.Dec(), routerNative.Dec(), "wrapped reserve is also backed by native coin")
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Chain)
		wantErr error
	}{
		{
			name:    "bad ledger address",
			modify:  func(c *config.Chain) { c.LedgerAddress = "ledger" },
			wantErr: entity.ErrInvalidAddress,
		},
		{
			name:   "accepted asset not a token",
			modify: func(c *config.Chain) { c.AcceptedAsset = alice },
		},
		{
			name:   "wrapped native not a token",
			modify: func(c *config.Chain) { c.Tokens = c.Tokens[1:] },
		},
		{
			name:   "duplicate token",
			modify: func(c *config.Chain) { c.Tokens = append(c.Tokens, c.Tokens[0]) },
		},
		{
			name: "genesis for unknown asset",
			modify: func(c *config.Chain) {
				c.Genesis = append(c.Genesis, config.Allocation{Account: alice, Asset: alice, Amount: "1"})
			},
			wantErr: entity.ErrUnknownToken,
		},
		{
			name: "genesis amount too precise",
			modify: func(c *config.Chain) {
				c.Genesis = append(c.Genesis, config.Allocation{Account: alice, Asset: usdc, Amount: "0.0000001"})
			},
			wantErr: entity.ErrInvalidAmount,
		},
		{
			name:   "empty pool",
			modify: func(c *config.Chain) { c.Pools[0].ReserveB = "0" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := chainConfig()
			tt.modify(&cfg)
			_, err := New(context.Background(), cfg, logger.NewNopLogger())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

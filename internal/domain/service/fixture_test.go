package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/domain/service"
	"custodian.io/internal/infrastructure/chain"
	"custodian.io/internal/infrastructure/logger"
	"custodian.io/internal/infrastructure/repository"
	"custodian.io/internal/infrastructure/router"
)

var (
	maticAddress   = common.HexToAddress("0x0000000000000000000000000000000000001010")
	wmaticAddress  = common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")
	usdcAddress    = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	daiAddress     = common.HexToAddress("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063")
	ledgerAddress  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	gatewayAddress = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	routerAddress  = common.HexToAddress("0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506")
	alice          = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob            = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	assets = entity.Assets{Native: maticAddress, WrappedNative: wmaticAddress}
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

// usdc converts whole USDC to its 6-decimal base unit
func usdc(v uint64) *uint256.Int { return uint256.NewInt(v * 1_000_000) }

type fixture struct {
	env      *chain.Environment
	bank     *chain.Bank
	registry *chain.Registry
	usdc     *chain.ERC20
	wmatic   *chain.ERC20
	dai      *chain.ERC20
	amm      *router.AMM
	ledger   *service.Ledger
	gateway  *service.SwapGateway
	now      time.Time
}

// newFixture funds alice with 1000 USDC, 10,000 DAI and 10,000 native
// coin and seeds WMATIC/USDC 1,000,000/700,000 and USDC/DAI
// 1,000,000/1,000,000 pools, in base units.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	journal := chain.NewJournal()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		bank:     chain.NewBank(journal),
		registry: chain.NewRegistry(),
		usdc:     chain.NewERC20(usdcAddress, "USDC", 6, journal),
		wmatic:   chain.NewERC20(wmaticAddress, "WMATIC", 18, journal),
		dai:      chain.NewERC20(daiAddress, "DAI", 18, journal),
		now:      now,
	}
	f.env = chain.NewEnvironment(journal, f.bank, logger.NewNopLogger(), chain.WithClock(func() time.Time { return now }))
	for _, token := range []*chain.ERC20{f.usdc, f.wmatic, f.dai} {
		f.registry.Register(token)
	}
	f.amm = router.NewAMM(router.Config{Address: routerAddress, WrappedNative: wmaticAddress, FeeBps: router.DefaultFeeBps},
		f.registry, f.bank, journal, logger.NewNopLogger())
	f.ledger = service.NewLedger(ledgerAddress, f.usdc,
		repository.NewInMemoryLedger(journal, logger.NewNopLogger()))
	f.gateway = service.NewSwapGateway(gatewayAddress, usdcAddress, assets, f.registry, f.bank, f.amm)

	f.exec(t, common.Address{}, nil, func(ctx context.Context, _ entity.Call) error {
		steps := []error{
			f.usdc.Mint(ctx, alice, usdc(1000)),
			f.dai.Mint(ctx, alice, n(10_000)),
			f.bank.Mint(ctx, alice, n(10_000)),
			f.wmatic.Mint(ctx, routerAddress, n(1_000_000)),
			f.bank.Mint(ctx, routerAddress, n(1_000_000)),
			f.usdc.Mint(ctx, routerAddress, n(1_700_000)),
			f.dai.Mint(ctx, routerAddress, n(1_000_000)),
			f.amm.AddLiquidity(ctx, wmaticAddress, usdcAddress, n(1_000_000), n(700_000)),
			f.amm.AddLiquidity(ctx, usdcAddress, daiAddress, n(1_000_000), n(1_000_000)),
		}
		for _, err := range steps {
			if err != nil {
				return err
			}
		}
		return nil
	})
	return f
}

// exec runs fn as one transaction and fails the test if it reverts.
func (f *fixture) exec(t *testing.T, from common.Address, value *uint256.Int, fn func(ctx context.Context, call entity.Call) error) {
	t.Helper()
	_, err := f.env.Execute(context.Background(), entity.Tx{From: from, Value: value}, fn)
	require.NoError(t, err)
}

func (f *fixture) approve(t *testing.T, token port.Token, owner, spender common.Address, amount *uint256.Int) {
	t.Helper()
	f.exec(t, owner, nil, func(ctx context.Context, _ entity.Call) error {
		return token.Approve(ctx, owner, spender, amount)
	})
}

func tokenBalance(t *testing.T, token port.Token, owner common.Address) *uint256.Int {
	t.Helper()
	balance, err := token.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	return balance
}

func nativeBalance(t *testing.T, bank *chain.Bank, owner common.Address) *uint256.Int {
	t.Helper()
	balance, err := bank.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	return balance
}

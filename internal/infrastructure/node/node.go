package node

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/service"
	"custodian.io/internal/infrastructure/chain"
	"custodian.io/internal/infrastructure/config"
	"custodian.io/internal/infrastructure/logger"
	"custodian.io/internal/infrastructure/repository"
	"custodian.io/internal/infrastructure/router"
)

// Node is a simulated chain with the ledger, the swap gateway and a
// router deployed on it.
type Node struct {
	Journal     *chain.Journal
	Environment *chain.Environment
	Bank        *chain.Bank
	Registry    *chain.Registry
	Router      *router.AMM
	Ledger      *service.Ledger
	Gateway     *service.SwapGateway

	Native   entity.AssetInfo
	Accepted entity.AssetInfo
	Tokens   []entity.AssetInfo
	Assets   entity.Assets
}

type addresses struct {
	native, wrapped, accepted, ledger, gateway, router common.Address
}

// New deploys everything described by cfg and applies its genesis
// allocations and pools in one transaction.
func New(ctx context.Context, cfg config.Chain, log logger.Logger, opts ...chain.Option) (*Node, error) {
	addrs, err := parseAddresses(cfg)
	if err != nil {
		return nil, err
	}

	journal := chain.NewJournal()
	bank := chain.NewBank(journal)
	registry := chain.NewRegistry()

	n := &Node{
		Journal:     journal,
		Environment: chain.NewEnvironment(journal, bank, log, opts...),
		Bank:        bank,
		Registry:    registry,
		Native: entity.AssetInfo{
			Address:  addrs.native,
			Symbol:   cfg.Native.Symbol,
			Decimals: cfg.Native.Decimals,
		},
		Assets: entity.Assets{Native: addrs.native, WrappedNative: addrs.wrapped},
	}

	erc20s := make(map[common.Address]*chain.ERC20, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		addr, err := entity.ParseAddress(t.Address)
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", t.Symbol, err)
		}
		if _, dup := erc20s[addr]; dup {
			return nil, fmt.Errorf("token %s listed twice", addr.Hex())
		}
		token := chain.NewERC20(addr, t.Symbol, t.Decimals, journal)
		erc20s[addr] = token
		registry.Register(token)
		info := entity.AssetInfo{Address: addr, Symbol: t.Symbol, Decimals: t.Decimals}
		n.Tokens = append(n.Tokens, info)
		if addr == addrs.accepted {
			n.Accepted = info
		}
	}

	accepted, ok := erc20s[addrs.accepted]
	if !ok {
		return nil, fmt.Errorf("accepted asset %s is not a configured token", addrs.accepted.Hex())
	}
	if _, ok := erc20s[addrs.wrapped]; !ok {
		return nil, fmt.Errorf("wrapped native %s is not a configured token", addrs.wrapped.Hex())
	}

	n.Router = router.NewAMM(router.Config{
		Address:       addrs.router,
		WrappedNative: addrs.wrapped,
		FeeBps:        cfg.RouterFeeBps,
	}, registry, bank, journal, log)

	n.Ledger = service.NewLedger(addrs.ledger, accepted,
		repository.NewInMemoryLedger(journal, log))

	n.Gateway = service.NewSwapGateway(addrs.gateway, addrs.accepted, n.Assets,
		registry, bank, n.Router)

	_, err = n.Environment.Execute(ctx, entity.Tx{}, func(ctx context.Context, _ entity.Call) error {
		for _, alloc := range cfg.Genesis {
			if err := n.allocate(ctx, erc20s, alloc); err != nil {
				return err
			}
		}
		for _, p := range cfg.Pools {
			if err := n.seedPool(ctx, erc20s, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply genesis: %w", err)
	}

	log.LogInfo(ctx, "Chain ready",
		"accepted_asset", addrs.accepted.Hex(),
		"ledger", addrs.ledger.Hex(),
		"gateway", addrs.gateway.Hex(),
		"router", addrs.router.Hex(),
		"tokens", len(n.Tokens),
		"pools", len(cfg.Pools))

	return n, nil
}

func (n *Node) decimalsOf(asset common.Address) (uint8, bool) {
	if asset == n.Native.Address {
		return n.Native.Decimals, true
	}
	for _, t := range n.Tokens {
		if t.Address == asset {
			return t.Decimals, true
		}
	}
	return 0, false
}

func (n *Node) allocate(ctx context.Context, erc20s map[common.Address]*chain.ERC20, alloc config.Allocation) error {
	account, err := entity.ParseAddress(alloc.Account)
	if err != nil {
		return fmt.Errorf("genesis account: %w", err)
	}
	asset, err := entity.ParseAddress(alloc.Asset)
	if err != nil {
		return fmt.Errorf("genesis asset: %w", err)
	}
	amount, err := n.units(asset, alloc.Amount)
	if err != nil {
		return err
	}
	return n.mint(ctx, erc20s, asset, account, amount)
}

// seedPool mints the pool's reserves to the router and registers them.
// A wrapped native reserve is minted both as token and as native coin.
func (n *Node) seedPool(ctx context.Context, erc20s map[common.Address]*chain.ERC20, p config.Pool) error {
	assetA, err := entity.ParseAddress(p.AssetA)
	if err != nil {
		return fmt.Errorf("pool asset: %w", err)
	}
	assetB, err := entity.ParseAddress(p.AssetB)
	if err != nil {
		return fmt.Errorf("pool asset: %w", err)
	}
	reserveA, err := n.units(assetA, p.ReserveA)
	if err != nil {
		return err
	}
	reserveB, err := n.units(assetB, p.ReserveB)
	if err != nil {
		return err
	}

	routerAddr := n.Router.Address()
	for _, side := range []struct {
		asset   common.Address
		reserve *uint256.Int
	}{{assetA, reserveA}, {assetB, reserveB}} {
		if err := n.mint(ctx, erc20s, side.asset, routerAddr, side.reserve); err != nil {
			return err
		}
		if side.asset == n.Assets.WrappedNative {
			if err := n.Bank.Mint(ctx, routerAddr, side.reserve); err != nil {
				return err
			}
		}
	}
	return n.Router.AddLiquidity(ctx, assetA, assetB, reserveA, reserveB)
}

func (n *Node) mint(ctx context.Context, erc20s map[common.Address]*chain.ERC20, asset, to common.Address, amount *uint256.Int) error {
	if asset == n.Native.Address {
		return n.Bank.Mint(ctx, to, amount)
	}
	token, ok := erc20s[asset]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownToken, asset.Hex())
	}
	return token.Mint(ctx, to, amount)
}

func (n *Node) units(asset common.Address, amount string) (*uint256.Int, error) {
	decimals, ok := n.decimalsOf(asset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownToken, asset.Hex())
	}
	return entity.ParseUnits(strings.TrimSpace(amount), decimals)
}

func parseAddresses(cfg config.Chain) (addresses, error) {
	var (
		addrs addresses
		err   error
	)
	fields := []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"native", cfg.Native.Address, &addrs.native},
		{"wrappedNative", cfg.WrappedNative, &addrs.wrapped},
		{"acceptedAsset", cfg.AcceptedAsset, &addrs.accepted},
		{"ledgerAddress", cfg.LedgerAddress, &addrs.ledger},
		{"gatewayAddress", cfg.GatewayAddress, &addrs.gateway},
		{"routerAddress", cfg.RouterAddress, &addrs.router},
	}
	for _, f := range fields {
		if *f.dst, err = entity.ParseAddress(f.value); err != nil {
			return addrs, fmt.Errorf("chain.%s: %w", f.name, err)
		}
	}
	return addrs, nil
}

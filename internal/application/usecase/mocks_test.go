package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

var (
	ledgerAddress  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	gatewayAddress = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	usdcAddress    = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	alice          = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// mockExecutor implements port.Executor by running fn inline
type mockExecutor struct {
	txs     []entity.Tx
	views   int
	failErr error
}

func (m *mockExecutor) Execute(ctx context.Context, tx entity.Tx, fn func(ctx context.Context, call entity.Call) error) (*entity.Receipt, error) {
	m.txs = append(m.txs, tx)
	if m.failErr != nil {
		return nil, m.failErr
	}
	call := entity.Call{TxID: "tx-1", Sender: tx.From, Value: tx.Value, Time: time.Unix(1_700_000_000, 0).UTC()}
	if err := fn(ctx, call); err != nil {
		return nil, err
	}
	return &entity.Receipt{TxID: call.TxID, From: tx.From, To: tx.To, Value: "0", Time: call.Time}, nil
}

func (m *mockExecutor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	m.views++
	if m.failErr != nil {
		return m.failErr
	}
	return fn(ctx)
}

// mockLedger implements port.Ledger
type mockLedger struct {
	depositFunc   func(ctx context.Context, call entity.Call, amount *uint256.Int) error
	withdrawFunc  func(ctx context.Context, call entity.Call, amount *uint256.Int) error
	balanceOfFunc func(ctx context.Context, account common.Address) (*uint256.Int, error)
	historyFunc   func(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error)
	reservesFunc  func(ctx context.Context) (*entity.Reserves, error)
}

func (m *mockLedger) Address() common.Address { return ledgerAddress }
func (m *mockLedger) Asset() common.Address   { return usdcAddress }

func (m *mockLedger) Deposit(ctx context.Context, call entity.Call, amount *uint256.Int) error {
	if m.depositFunc != nil {
		return m.depositFunc(ctx, call, amount)
	}
	return nil
}

func (m *mockLedger) Withdraw(ctx context.Context, call entity.Call, amount *uint256.Int) error {
	if m.withdrawFunc != nil {
		return m.withdrawFunc(ctx, call, amount)
	}
	return nil
}

func (m *mockLedger) BalanceOf(ctx context.Context, account common.Address) (*uint256.Int, error) {
	if m.balanceOfFunc != nil {
		return m.balanceOfFunc(ctx, account)
	}
	return new(uint256.Int), nil
}

func (m *mockLedger) History(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, account)
	}
	return nil, nil
}

func (m *mockLedger) Reserves(ctx context.Context) (*entity.Reserves, error) {
	if m.reservesFunc != nil {
		return m.reservesFunc(ctx)
	}
	return &entity.Reserves{Asset: usdcAddress}, nil
}

// mockGateway implements port.SwapGateway
type mockGateway struct {
	swapFunc func(ctx context.Context, call entity.Call, req entity.SwapRequest) (*entity.SwapResult, error)
}

func (m *mockGateway) Address() common.Address { return gatewayAddress }

func (m *mockGateway) Swap(ctx context.Context, call entity.Call, req entity.SwapRequest) (*entity.SwapResult, error) {
	return m.swapFunc(ctx, call, req)
}

// mockToken implements port.Token with fixed balances
type mockToken struct {
	address     common.Address
	balances    map[common.Address]*uint256.Int
	approveFunc func(owner, spender common.Address, amount *uint256.Int) error
}

func (m *mockToken) Address() common.Address { return m.address }

func (m *mockToken) BalanceOf(_ context.Context, owner common.Address) (*uint256.Int, error) {
	if b, ok := m.balances[owner]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (m *mockToken) Allowance(context.Context, common.Address, common.Address) (*uint256.Int, error) {
	return new(uint256.Int), nil
}

func (m *mockToken) Transfer(context.Context, common.Address, common.Address, *uint256.Int) error {
	return errors.New("read only")
}

func (m *mockToken) TransferFrom(context.Context, common.Address, common.Address, common.Address, *uint256.Int) error {
	return errors.New("read only")
}

func (m *mockToken) Approve(_ context.Context, owner, spender common.Address, amount *uint256.Int) error {
	if m.approveFunc != nil {
		return m.approveFunc(owner, spender, amount)
	}
	return errors.New("read only")
}

// mockRegistry implements port.TokenRegistry
type mockRegistry map[common.Address]port.Token

func (m mockRegistry) Token(addr common.Address) (port.Token, error) {
	if token, ok := m[addr]; ok {
		return token, nil
	}
	return nil, entity.ErrUnknownToken
}

// mockNative implements port.NativeAsset
type mockNative struct {
	balances map[common.Address]*uint256.Int
}

func (m *mockNative) BalanceOf(_ context.Context, owner common.Address) (*uint256.Int, error) {
	if b, ok := m.balances[owner]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (m *mockNative) Transfer(context.Context, common.Address, common.Address, *uint256.Int) error {
	return errors.New("read only")
}

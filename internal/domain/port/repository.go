package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
)

// BalanceRepository is the port for recorded ledger balances
type BalanceRepository interface {
	GetBalance(ctx context.Context, account common.Address) (*uint256.Int, error)
	// AddEntry applies entry to the account's balance and appends it to
	// the audit trail, returning the new balance.
	AddEntry(ctx context.Context, entry entity.LedgerEntry) (*uint256.Int, error)
	TotalRecorded(ctx context.Context) (*uint256.Int, error)
	History(ctx context.Context, account common.Address) ([]entity.LedgerEntry, error)
}

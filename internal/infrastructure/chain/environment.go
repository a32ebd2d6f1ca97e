package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/infrastructure/logger"
)

// Environment executes transactions one at a time. Each transaction is
// atomic: on error every change recorded in the journal since it started
// is undone.
type Environment struct {
	mu      sync.Mutex
	journal *Journal
	native  port.NativeAsset
	clock   func() time.Time
	logger  logger.Logger
}

var _ port.Executor = (*Environment)(nil)

// Option configures an Environment
type Option func(*Environment)

// WithClock overrides the source of block time
func WithClock(clock func() time.Time) Option {
	return func(e *Environment) {
		e.clock = clock
	}
}

// NewEnvironment creates an execution environment over the stores that
// share journal.
func NewEnvironment(journal *Journal, native port.NativeAsset, logger logger.Logger, opts ...Option) *Environment {
	e := &Environment{
		journal: journal,
		native:  native,
		clock:   time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute moves tx.Value from tx.From to tx.To and runs fn as a single
// unit of work.
func (e *Environment) Execute(ctx context.Context, tx entity.Tx, fn func(ctx context.Context, call entity.Call) error) (*entity.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txID := uuid.New().String()
	value := new(uint256.Int)
	if tx.Value != nil {
		value = tx.Value.Clone()
	}
	call := entity.Call{
		TxID:   txID,
		Sender: tx.From,
		Value:  value,
		Time:   e.clock().UTC().Truncate(time.Second),
	}

	snapshot := e.journal.Snapshot()
	defer func() {
		if r := recover(); r != nil {
			e.journal.RevertToSnapshot(snapshot)
			panic(r)
		}
	}()

	if !value.IsZero() {
		if err := e.native.Transfer(ctx, tx.From, tx.To, value); err != nil {
			e.journal.RevertToSnapshot(snapshot)
			return nil, fmt.Errorf("%w: attach value: %w", entity.ErrTransferFailed, err)
		}
	}

	if err := fn(ctx, call); err != nil {
		e.journal.RevertToSnapshot(snapshot)
		e.logger.LogWarning(ctx, "Transaction reverted",
			"tx_id", txID,
			"from", tx.From.Hex(),
			"to", tx.To.Hex(),
			"value", value.Dec(),
			"reason", err.Error())
		return nil, err
	}

	e.journal.Commit()
	e.logger.LogInfo(ctx, "Transaction committed",
		"tx_id", txID,
		"from", tx.From.Hex(),
		"to", tx.To.Hex(),
		"value", value.Dec())

	return &entity.Receipt{
		TxID:  txID,
		From:  tx.From,
		To:    tx.To,
		Value: value.Dec(),
		Time:  call.Time,
	}, nil
}

// View runs a read-only fn between transactions, so it never observes
// a half-applied one.
func (e *Environment) View(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

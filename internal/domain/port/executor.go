package port

import (
	"context"

	"custodian.io/internal/domain/entity"
)

// Executor runs one transaction as an atomic unit: either every state
// change made by fn (and by anything fn calls) takes effect, or none do.
// Transactions never overlap.
type Executor interface {
	Execute(ctx context.Context, tx entity.Tx, fn func(ctx context.Context, call entity.Call) error) (*entity.Receipt, error)
	// View runs fn between transactions
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

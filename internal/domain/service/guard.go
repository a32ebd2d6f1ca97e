package service

import (
	"fmt"
	"sync/atomic"

	"custodian.io/internal/domain/entity"
)

// guard is a per-component busy flag. Operations are serialized by the
// executor, so the flag is only ever contended by a nested call made
// from inside an external collaborator.
type guard struct {
	busy atomic.Bool
}

func (g *guard) enter(op string) (func(), error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", entity.ErrReentrantCall, op)
	}
	return func() { g.busy.Store(false) }, nil
}

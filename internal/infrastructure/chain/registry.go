package chain

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// Registry maps token addresses to their implementation
type Registry struct {
	mu     sync.RWMutex
	tokens map[common.Address]port.Token
}

var _ port.TokenRegistry = (*Registry)(nil)

// NewRegistry creates an empty token registry
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[common.Address]port.Token),
	}
}

// Register adds or replaces a token
func (r *Registry) Register(token port.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Address()] = token
}

// Token resolves addr
func (r *Registry) Token(addr common.Address) (port.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownToken, addr.Hex())
	}
	return token, nil
}

package port

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// RequestValidator authenticates a signed request and returns the
// account that signed it.
type RequestValidator interface {
	ValidateRequest(ctx context.Context, r *http.Request, body []byte) (common.Address, error)
}

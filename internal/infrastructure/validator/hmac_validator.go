package validator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/infrastructure/logger"
)

// Request headers carrying the signature
const (
	HeaderAccount   = "X-Account"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
	HeaderSignature = "X-Signature"
)

// NonceStore tracks used nonces to prevent replay attacks
type NonceStore struct {
	mu     sync.RWMutex
	nonces map[string]time.Time
}

// NewNonceStore creates a new nonce store
func NewNonceStore() *NonceStore {
	return &NonceStore{
		nonces: make(map[string]time.Time),
	}
}

// IsValid checks if a nonce is valid (not seen before) and records it
func (ns *NonceStore) IsValid(nonce string, timestamp time.Time) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	// Check if nonce was already used
	if existingTime, exists := ns.nonces[nonce]; exists {
		// Allow cleanup of old nonces (older than 1 hour)
		if time.Since(existingTime) > time.Hour {
			delete(ns.nonces, nonce)
		} else {
			return false
		}
	}

	// Record the nonce
	ns.nonces[nonce] = timestamp

	// Cleanup old nonces periodically (simple approach - could be optimized)
	if len(ns.nonces) > 10000 {
		ns.cleanup()
	}

	return true
}

// cleanup removes nonces older than 1 hour
func (ns *NonceStore) cleanup() {
	now := time.Now()
	for nonce, timestamp := range ns.nonces {
		if now.Sub(timestamp) > time.Hour {
			delete(ns.nonces, nonce)
		}
	}
}

// HMACValidator implements the RequestValidator port
type HMACValidator struct {
	secret             string
	nonceStore         *NonceStore
	timestampTolerance time.Duration
	logger             logger.Logger
}

// NewHMACValidator creates a new HMAC validator
func NewHMACValidator(
	secret string,
	timestampTolerance time.Duration,
	logger logger.Logger,
) port.RequestValidator {
	return &HMACValidator{
		secret:             secret,
		nonceStore:         NewNonceStore(),
		timestampTolerance: timestampTolerance,
		logger:             logger,
	}
}

// ValidateRequest validates the incoming signed request and returns the
// account that signed it
func (v *HMACValidator) ValidateRequest(ctx context.Context, r *http.Request, body []byte) (common.Address, error) {
	// Extract headers
	accountStr := r.Header.Get(HeaderAccount)
	timestampStr := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	signature := r.Header.Get(HeaderSignature)

	if accountStr == "" {
		return common.Address{}, fmt.Errorf("missing X-Account header")
	}
	if timestampStr == "" {
		return common.Address{}, fmt.Errorf("missing X-Timestamp header")
	}
	if nonce == "" {
		return common.Address{}, fmt.Errorf("missing X-Nonce header")
	}
	if signature == "" {
		return common.Address{}, fmt.Errorf("missing X-Signature header")
	}

	account, err := entity.ParseAddress(accountStr)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid X-Account: %w", err)
	}

	// Parse timestamp
	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid X-Timestamp format: %w", err)
	}
	requestTime := time.Unix(timestamp, 0)

	// Validate timestamp is within tolerance
	now := time.Now()
	timeDiff := now.Sub(requestTime)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff > v.timestampTolerance {
		v.logger.LogWarning(ctx, "Request timestamp out of tolerance",
			"timestamp", timestamp,
			"current_time", now.Unix(),
			"difference_seconds", timeDiff.Seconds(),
			"tolerance_seconds", v.timestampTolerance.Seconds())
		return common.Address{}, fmt.Errorf("timestamp out of tolerance: difference is %v, max allowed is %v", timeDiff, v.timestampTolerance)
	}

	// Compare signatures before spending the nonce, so a forged request
	// cannot burn a legitimate one
	expectedSignature := Sign(v.secret, timestampStr, nonce, accountStr, body)
	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		v.logger.LogWarning(ctx, "Invalid signature",
			"account", accountStr)
		return common.Address{}, fmt.Errorf("invalid signature")
	}

	// Validate nonce (prevent replay attacks)
	if !v.nonceStore.IsValid(accountStr+"/"+nonce, requestTime) {
		v.logger.LogWarning(ctx, "Duplicate nonce detected (replay attack)",
			"account", accountStr,
			"nonce", nonce,
			"timestamp", timestamp)
		return common.Address{}, fmt.Errorf("duplicate nonce detected: possible replay attack")
	}

	return account, nil
}

// Sign computes the hex HMAC SHA256 signature of a request
// Format: X-Timestamp + "\n" + X-Nonce + "\n" + X-Account + "\n" + <raw_request_body>
func Sign(secret, timestamp, nonce, account string, body []byte) string {
	message := timestamp + "\n" + nonce + "\n" + account + "\n" + string(body)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

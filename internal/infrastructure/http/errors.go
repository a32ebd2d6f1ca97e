package http

import (
	"context"
	"errors"
	"net/http"

	"custodian.io/internal/domain/entity"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{entity.ErrReentrantCall, "REENTRANT_CALL", http.StatusConflict},
	{entity.ErrSwapFailed, "SWAP_FAILED", http.StatusBadGateway},
	{entity.ErrExpired, "EXPIRED", http.StatusGone},
	{entity.ErrValueMismatch, "VALUE_MISMATCH", http.StatusBadRequest},
	{entity.ErrInsufficientBalance, "INSUFFICIENT_BALANCE", http.StatusUnprocessableEntity},
	{entity.ErrTransferFailed, "TRANSFER_FAILED", http.StatusUnprocessableEntity},
	{entity.ErrInvalidRoute, "INVALID_ROUTE", http.StatusBadRequest},
	{entity.ErrInvalidAmount, "INVALID_AMOUNT", http.StatusBadRequest},
	{entity.ErrInvalidAddress, "INVALID_ADDRESS", http.StatusBadRequest},
	{entity.ErrUnknownToken, "UNKNOWN_TOKEN", http.StatusBadRequest},
	{entity.ErrInsolvent, "INSOLVENT", http.StatusInternalServerError},
	{context.Canceled, "CANCELED", http.StatusServiceUnavailable},
	{context.DeadlineExceeded, "TIMEOUT", http.StatusServiceUnavailable},
}

// MapError maps a domain failure to its code and HTTP status
func MapError(err error) (string, int) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError
}

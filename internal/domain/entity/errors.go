package entity

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidRoute        = errors.New("invalid route")
	ErrExpired             = errors.New("expired")
	ErrValueMismatch       = errors.New("attached value mismatch")
	ErrTransferFailed      = errors.New("transfer failed")
	ErrSwapFailed          = errors.New("swap failed")
	ErrReentrantCall       = errors.New("reentrant call")
	ErrInsolvent           = errors.New("ledger holds less than it owes")
	ErrUnknownToken        = errors.New("unknown token")
	ErrInvalidAddress      = errors.New("invalid address")
)

package router

import "errors"

var (
	ErrExpired                  = errors.New("router: expired")
	ErrInvalidPath              = errors.New("router: invalid path")
	ErrInsufficientInputAmount  = errors.New("router: insufficient input amount")
	ErrInsufficientOutputAmount = errors.New("router: insufficient output amount")
	ErrInsufficientLiquidity    = errors.New("router: insufficient liquidity")
	ErrPoolNotFound             = errors.New("router: pool not found")
	ErrOverflow                 = errors.New("router: arithmetic overflow")
)

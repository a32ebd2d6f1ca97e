package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"custodian.io/internal/application/usecase"
	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
	"custodian.io/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// UseCases groups the application operations served over HTTP
type UseCases struct {
	Deposit  *usecase.DepositUseCase
	Withdraw *usecase.WithdrawUseCase
	Balance  *usecase.GetBalanceUseCase
	History  *usecase.GetHistoryUseCase
	Reserves *usecase.GetReservesUseCase
	Swap     *usecase.SwapUseCase
	Wallet   *usecase.GetWalletUseCase
	Approve  *usecase.ApproveUseCase
}

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	useCases  UseCases
	validator port.RequestValidator
	decimals  uint8
	logger    logger.Logger
}

// NewHandler creates a new HTTP handler. decimals is the precision of the
// ledger's accepted asset and is used to format balances.
func NewHandler(
	useCases UseCases,
	validator port.RequestValidator,
	decimals uint8,
	logger logger.Logger,
) *Handler {
	return &Handler{
		useCases:  useCases,
		validator: validator,
		decimals:  decimals,
		logger:    logger,
	}
}

// AmountRequest is the body of deposit and withdraw requests
type AmountRequest struct {
	Amount string `json:"amount"`
}

// LedgerResponse is returned after a committed deposit or withdrawal
type LedgerResponse struct {
	Receipt   *entity.Receipt `json:"receipt"`
	Account   string          `json:"account"`
	Amount    string          `json:"amount"`
	Balance   string          `json:"balance"`
	Formatted string          `json:"formatted"`
}

// ApproveRequestBody is the body of an allowance request
type ApproveRequestBody struct {
	Asset   string `json:"asset"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// SwapRequestBody is the body of a swap request. Amounts are base-10
// integers in the smallest unit, deadline is unix seconds.
type SwapRequestBody struct {
	Beneficiary  string   `json:"beneficiary"`
	AmountIn     string   `json:"amountIn"`
	AssetIn      string   `json:"assetIn"`
	AssetOut     string   `json:"assetOut"`
	Path         []string `json:"path"`
	MinAmountOut string   `json:"minAmountOut"`
	Deadline     int64    `json:"deadline"`
	Value        string   `json:"value,omitempty"`
}

// SwapResponse is returned after a committed swap
type SwapResponse struct {
	Receipt     *entity.Receipt `json:"receipt"`
	Beneficiary string          `json:"beneficiary"`
	Amounts     []string        `json:"amounts"`
	AmountOut   string          `json:"amountOut"`
}

// HistoryEntry is one ledger movement
type HistoryEntry struct {
	TxID         string    `json:"txId"`
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balanceAfter"`
	Time         time.Time `json:"time"`
}

// HistoryResponse lists an account's ledger movements
type HistoryResponse struct {
	Account string         `json:"account"`
	Entries []HistoryEntry `json:"entries"`
}

// ReservesResponse compares recorded balances with held funds
type ReservesResponse struct {
	Asset    string `json:"asset"`
	Recorded string `json:"recorded"`
	Held     string `json:"held"`
	Surplus  string `json:"surplus"`
	Solvent  bool   `json:"solvent"`
}

// HandleDeposit handles POST /ledger/deposit requests
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleLedger(w, r, "deposit", h.useCases.Deposit.Execute)
}

// HandleWithdraw handles POST /ledger/withdraw requests
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleLedger(w, r, "withdraw", h.useCases.Withdraw.Execute)
}

type ledgerOperation func(ctx context.Context, req usecase.LedgerRequest) (*usecase.LedgerResult, error)

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request, op string, execute ledgerOperation) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, body, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := json.Unmarshal(body, &req); err != nil {
		requestLogger.LogWarning(ctx, "Failed to parse JSON body", "error", err.Error())
		h.writeError(w, r, fmt.Errorf("%w: invalid JSON body", entity.ErrInvalidAmount))
		return
	}
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := execute(ctx, usecase.LedgerRequest{Caller: caller, Amount: amount})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LedgerResponse{
		Receipt:   result.Receipt,
		Account:   caller.Hex(),
		Amount:    amount.Dec(),
		Balance:   result.Balance.Dec(),
		Formatted: entity.FormatUnits(result.Balance, h.decimals),
	})

	requestLogger.LogInfo(ctx, "Ledger operation committed",
		"operation", op,
		"account", caller.Hex(),
		"amount", amount.Dec(),
		"tx_id", result.Receipt.TxID)
}

// HandleSwap handles POST /swap requests
func (h *Handler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, body, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req SwapRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		requestLogger.LogWarning(ctx, "Failed to parse JSON body", "error", err.Error())
		h.writeError(w, r, fmt.Errorf("%w: invalid JSON body", entity.ErrInvalidRoute))
		return
	}

	cmd, err := req.command(caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	outcome, err := h.useCases.Swap.Execute(ctx, cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	amounts := make([]string, len(outcome.Result.Amounts))
	for i, amount := range outcome.Result.Amounts {
		amounts[i] = amount.Dec()
	}
	writeJSON(w, http.StatusOK, SwapResponse{
		Receipt:     outcome.Receipt,
		Beneficiary: cmd.Request.Beneficiary.Hex(),
		Amounts:     amounts,
		AmountOut:   outcome.Result.AmountOut.Dec(),
	})

	requestLogger.LogInfo(ctx, "Swap committed",
		"caller", caller.Hex(),
		"asset_in", cmd.Request.AssetIn.Hex(),
		"asset_out", cmd.Request.AssetOut.Hex(),
		"amount_in", cmd.Request.AmountIn.Dec(),
		"amount_out", outcome.Result.AmountOut.Dec(),
		"tx_id", outcome.Receipt.TxID)
}

func (b SwapRequestBody) command(caller common.Address) (usecase.SwapCommand, error) {
	var (
		req entity.SwapRequest
		err error
	)
	if req.Beneficiary, err = entity.ParseAddress(b.Beneficiary); err != nil {
		return usecase.SwapCommand{}, fmt.Errorf("%w: beneficiary: %w", entity.ErrInvalidRoute, err)
	}
	if req.AssetIn, err = entity.ParseAddress(b.AssetIn); err != nil {
		return usecase.SwapCommand{}, fmt.Errorf("%w: assetIn: %w", entity.ErrInvalidRoute, err)
	}
	if req.AssetOut, err = entity.ParseAddress(b.AssetOut); err != nil {
		return usecase.SwapCommand{}, fmt.Errorf("%w: assetOut: %w", entity.ErrInvalidRoute, err)
	}
	req.Path = make([]common.Address, len(b.Path))
	for i, hop := range b.Path {
		if req.Path[i], err = entity.ParseAddress(hop); err != nil {
			return usecase.SwapCommand{}, fmt.Errorf("%w: path[%d]: %w", entity.ErrInvalidRoute, i, err)
		}
	}
	if req.AmountIn, err = entity.ParseAmount(b.AmountIn); err != nil {
		return usecase.SwapCommand{}, err
	}
	if req.MinAmountOut, err = entity.ParseAmount(b.MinAmountOut); err != nil {
		return usecase.SwapCommand{}, err
	}
	req.Deadline = time.Unix(b.Deadline, 0).UTC()

	value := new(uint256.Int)
	if b.Value != "" {
		if value, err = entity.ParseAmount(b.Value); err != nil {
			return usecase.SwapCommand{}, fmt.Errorf("%w: value: %w", entity.ErrValueMismatch, err)
		}
	}

	return usecase.SwapCommand{Caller: caller, Value: value, Request: req}, nil
}

// HandleApprove handles POST /wallet/approve requests
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, body, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req ApproveRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		requestLogger.LogWarning(ctx, "Failed to parse JSON body", "error", err.Error())
		h.writeError(w, r, fmt.Errorf("%w: invalid JSON body", entity.ErrInvalidAmount))
		return
	}
	asset, err := entity.ParseAddress(req.Asset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	spender, err := entity.ParseAddress(req.Spender)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	receipt, err := h.useCases.Approve.Execute(ctx, usecase.ApproveRequest{
		Owner:   caller,
		Asset:   asset,
		Spender: spender,
		Amount:  amount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)

	requestLogger.LogInfo(ctx, "Allowance set",
		"owner", caller.Hex(),
		"asset", asset.Hex(),
		"spender", spender.Hex(),
		"amount", amount.Dec())
}

// HandleBalance handles GET /ledger/balance/{account} requests
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	account, ok := accountFromPath(w, r, "/ledger/balance/")
	if !ok {
		return
	}

	balance, err := h.useCases.Balance.Execute(ctx, account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)

	requestLogger.LogInfo(ctx, "Balance retrieved",
		"account", account.Hex())
}

// HandleHistory handles GET /ledger/history/{account} requests
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := accountFromPath(w, r, "/ledger/history/")
	if !ok {
		return
	}

	history, err := h.useCases.History.Execute(ctx, account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response := HistoryResponse{
		Account: account.Hex(),
		Entries: make([]HistoryEntry, 0, len(history)),
	}
	for _, entry := range history {
		response.Entries = append(response.Entries, HistoryEntry{
			TxID:         entry.TxID,
			Kind:         string(entry.Kind),
			Amount:       entry.Amount.Dec(),
			BalanceAfter: entry.BalanceAfter.Dec(),
			Time:         entry.Time,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleReserves handles GET /ledger/reserves requests
func (h *Handler) HandleReserves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reserves, err := h.useCases.Reserves.Execute(ctx)
	solvent := err == nil
	if err != nil && !(errors.Is(err, entity.ErrInsolvent) && reserves != nil) {
		h.writeError(w, r, err)
		return
	}
	if !solvent {
		requestLogger.LogError(ctx, "Ledger holds less than it records", err,
			"recorded", reserves.Recorded.Dec(),
			"held", reserves.Held.Dec())
	}

	surplus := "0"
	if reserves.Surplus != nil {
		surplus = reserves.Surplus.Dec()
	}
	writeJSON(w, http.StatusOK, ReservesResponse{
		Asset:    reserves.Asset.Hex(),
		Recorded: reserves.Recorded.Dec(),
		Held:     reserves.Held.Dec(),
		Surplus:  surplus,
		Solvent:  solvent,
	})
}

// HandleWallet handles GET /wallet/{account} requests
func (h *Handler) HandleWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := accountFromPath(w, r, "/wallet/")
	if !ok {
		return
	}

	wallet, err := h.useCases.Wallet.Execute(ctx, account)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}

// authenticate reads the body and resolves the signing account. It writes
// the failure response itself and reports whether the request may proceed.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (common.Address, []byte, bool) {
	ctx := r.Context()
	requestLogger := LoggerFrom(ctx, h.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		requestLogger.LogError(ctx, "Failed to read request body", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return common.Address{}, nil, false
	}

	caller, err := h.validator.ValidateRequest(ctx, r, body)
	if err != nil {
		requestLogger.LogWarning(ctx, "Request validation failed", "error", err.Error())
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: fmt.Sprintf("Validation failed: %v", err),
		})
		return common.Address{}, nil, false
	}

	return caller, body, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := MapError(err)
	requestLogger := LoggerFrom(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		requestLogger.LogError(r.Context(), "Request failed", err, "code", code)
	} else {
		requestLogger.LogWarning(r.Context(), "Request rejected", "code", code, "error", err.Error())
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}

func accountFromPath(w http.ResponseWriter, r *http.Request, prefix string) (common.Address, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return common.Address{}, false
	}

	// Extract account from path
	path := strings.TrimPrefix(r.URL.Path, prefix)
	if path == "" || path == r.URL.Path {
		http.Error(w, "Missing account parameter", http.StatusBadRequest)
		return common.Address{}, false
	}

	account, err := entity.ParseAddress(path)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "INVALID_ADDRESS", Message: err.Error()})
		return common.Address{}, false
	}
	return account, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	routes := map[string]http.HandlerFunc{
		"/ledger/deposit":  h.HandleDeposit,
		"/ledger/withdraw": h.HandleWithdraw,
		"/ledger/balance/": h.HandleBalance,
		"/ledger/history/": h.HandleHistory,
		"/ledger/reserves": h.HandleReserves,
		"/swap":            h.HandleSwap,
		"/wallet/":         h.HandleWallet,
		"/wallet/approve":  h.HandleApprove,
	}

	// Apply middleware chain
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, RequestIDMiddleware(
			LoggingMiddleware(handler, h.logger),
			h.logger,
		))
	}

	return mux
}

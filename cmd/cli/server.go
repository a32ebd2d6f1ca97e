package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"custodian.io/internal/application/usecase"
	"custodian.io/internal/infrastructure/config"
	httphandler "custodian.io/internal/infrastructure/http"
	"custodian.io/internal/infrastructure/logger"
	"custodian.io/internal/infrastructure/node"
	"custodian.io/internal/infrastructure/validator"

	"github.com/spf13/cobra"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Initialize logger
		appLogger := logger.NewLogger()

		// Get config directory (relative to where the binary is run from)
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			// Try absolute path from project root
			configDir = filepath.Join(".", "cmd", "config", serverDir)
		}

		// Load configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}
		appLogger = logger.New(os.Stdout, logger.ParseLevel(cfg.Server.LogLevel))

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"timestamp_tolerance", cfg.Auth.TimestampTolerance.String(),
			"accepted_asset", cfg.Chain.AcceptedAsset)

		// Deploy the ledger, gateway and router on a fresh chain
		chainNode, err := node.New(context.TODO(), cfg.Chain, appLogger)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to start chain", err)
			return fmt.Errorf("failed to start chain: %w", err)
		}

		requestValidator := validator.NewHMACValidator(
			cfg.Auth.HMACSecret,
			cfg.Auth.TimestampTolerance,
			appLogger,
		)

		// Initialize use cases
		executor := chainNode.Environment
		useCases := httphandler.UseCases{
			Deposit:  usecase.NewDepositUseCase(executor, chainNode.Ledger),
			Withdraw: usecase.NewWithdrawUseCase(executor, chainNode.Ledger),
			Balance:  usecase.NewGetBalanceUseCase(executor, chainNode.Ledger, chainNode.Accepted.Decimals),
			History:  usecase.NewGetHistoryUseCase(executor, chainNode.Ledger),
			Reserves: usecase.NewGetReservesUseCase(executor, chainNode.Ledger),
			Swap:     usecase.NewSwapUseCase(executor, chainNode.Gateway),
			Wallet: usecase.NewGetWalletUseCase(
				executor,
				chainNode.Bank,
				chainNode.Registry,
				chainNode.Native,
				chainNode.Tokens,
			),
			Approve: usecase.NewApproveUseCase(executor, chainNode.Registry),
		}

		// Initialize HTTP handler
		handler := httphandler.NewHandler(
			useCases,
			requestValidator,
			chainNode.Accepted.Decimals,
			appLogger,
		)

		// Setup routes
		mux := handler.SetupRoutes()

		// Create HTTP server
		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		// Error channel to capture errors from server
		errChan := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server",
				"address", addr,
				"ledger", chainNode.Ledger.Address().Hex(),
				"gateway", chainNode.Gateway.Address().Hex())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Graceful shutdown
		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			// Create shutdown context with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}

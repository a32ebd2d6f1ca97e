package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/domain/port"
)

// Holding is one asset balance of a wallet
type Holding struct {
	Asset     string `json:"asset"`
	Symbol    string `json:"symbol"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
}

// WalletResponse lists what an account holds outside the ledger
type WalletResponse struct {
	Account  string    `json:"account"`
	Holdings []Holding `json:"holdings"`
}

// GetWalletUseCase reads an account's native and token balances
type GetWalletUseCase struct {
	executor port.Executor
	native   port.NativeAsset
	tokens   port.TokenRegistry
	nativeAs entity.AssetInfo
	assets   []entity.AssetInfo
}

// NewGetWalletUseCase creates a new GetWalletUseCase reporting the native
// coin described by nativeAs and the listed token assets.
func NewGetWalletUseCase(
	executor port.Executor,
	native port.NativeAsset,
	tokens port.TokenRegistry,
	nativeAs entity.AssetInfo,
	assets []entity.AssetInfo,
) *GetWalletUseCase {
	return &GetWalletUseCase{
		executor: executor,
		native:   native,
		tokens:   tokens,
		nativeAs: nativeAs,
		assets:   assets,
	}
}

func (uc *GetWalletUseCase) Execute(ctx context.Context, account common.Address) (*WalletResponse, error) {
	response := &WalletResponse{
		Account:  account.Hex(),
		Holdings: make([]Holding, 0, len(uc.assets)+1),
	}
	err := uc.executor.View(ctx, func(ctx context.Context) error {
		balance, err := uc.native.BalanceOf(ctx, account)
		if err != nil {
			return err
		}
		response.Holdings = append(response.Holdings, Holding{
			Asset:     uc.nativeAs.Address.Hex(),
			Symbol:    uc.nativeAs.Symbol,
			Balance:   balance.Dec(),
			Formatted: entity.FormatUnits(balance, uc.nativeAs.Decimals),
		})

		for _, asset := range uc.assets {
			token, err := uc.tokens.Token(asset.Address)
			if err != nil {
				return err
			}
			balance, err := token.BalanceOf(ctx, account)
			if err != nil {
				return err
			}
			response.Holdings = append(response.Holdings, Holding{
				Asset:     asset.Address.Hex(),
				Symbol:    asset.Symbol,
				Balance:   balance.Dec(),
				Formatted: entity.FormatUnits(balance, asset.Decimals),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

package formance

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the current balance of account in asset, in base units.
func (s *Service) GetBalance(ctx context.Context, account store.Account, asset string) (decimal.Decimal, error) {
	bal, err := s.accountBalance(ctx, account, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return models.Units(bal), nil
}

// GetAllBalances returns all non-zero balances of an account. Asset names are
// the Formance codes, since token codes cannot be mapped back to mint keys.
func (s *Service) GetAllBalances(ctx context.Context, account store.Account) ([]models.AccountBalance, error) {
	zap.L().Debug("Getting all balances from Formance", zap.String("account", string(account)))

	vols, err := s.getAccountVolumes(ctx, string(account))
	if err != nil {
		return nil, err
	}

	var balances []models.AccountBalance
	for fAsset := range vols {
		bal := volumeBalance(vols, fAsset)
		if bal == nil || bal.Sign() == 0 {
			continue
		}
		balances = append(balances, models.AccountBalance{
			Id:      string(account),
			Account: string(account),
			Asset:   assetSymbol(fAsset),
			Balance: decimal.NewFromBigInt(bal, 0),
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Asset < balances[j].Asset })
	return balances, nil
}

// accountBalance reads one balance in base units. An unknown account holds nothing.
func (s *Service) accountBalance(ctx context.Context, account store.Account, asset string) (uint64, error) {
	vols, err := s.getAccountVolumes(ctx, string(account))
	if err != nil {
		return 0, err
	}
	bal := volumeBalance(vols, formanceAsset(asset))
	if bal == nil || bal.Sign() <= 0 {
		return 0, nil
	}
	if !bal.IsUint64() {
		return 0, fmt.Errorf("balance of %s in %s exceeds 64 bits", account, asset)
	}
	return bal.Uint64(), nil
}

// getAccountVolumes fetches volumes for a single account via GetAccount.
func (s *Service) getAccountVolumes(ctx context.Context, address string) (map[string]shared.V2Volume, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		zap.L().Warn("Failed to get account volumes", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// assetSymbol extracts the symbol from a Formance asset like "USDT/6".
func assetSymbol(fAsset string) string {
	for i, c := range fAsset {
		if c == '/' {
			return fAsset[:i]
		}
	}
	return fAsset
}

package prime

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"bonding-rewards-go/internal/models"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/portfolios"
	"github.com/coinbase-samples/prime-sdk-go/transactions"
	"github.com/coinbase-samples/prime-sdk-go/wallets"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const (
	defaultPortfolioName = "Default Portfolio"
	transactionPageLimit = 500
)

// Service reads the custody wallets that fund the reward pool.
type Service struct {
	client          client.RestClient
	portfoliosSvc   portfolios.PortfoliosService
	walletsSvc      wallets.WalletsService
	transactionsSvc transactions.TransactionsService
}

func NewService(creds *credentials.Credentials) (*Service, error) {
	httpClient, err := createCustomHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	restClient := client.NewRestClient(creds, httpClient)

	return &Service{
		client:          restClient,
		portfoliosSvc:   portfolios.NewPortfoliosService(restClient),
		walletsSvc:      wallets.NewWalletsService(restClient),
		transactionsSvc: transactions.NewTransactionsService(restClient),
	}, nil
}

func createCustomHttpClient() (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			DualStack: true,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}

func (s *Service) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	request := &portfolios.ListPortfoliosRequest{}

	response, err := s.portfoliosSvc.ListPortfolios(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("unable to list portfolios: %w", err)
	}

	portfolioList := make([]models.Portfolio, len(response.Portfolios))
	for i, p := range response.Portfolios {
		portfolioList[i] = models.Portfolio{
			Id:   p.Id,
			Name: p.Name,
		}
	}

	return portfolioList, nil
}

// FindPortfolio returns the portfolio with the given name, falling back to
// "Default Portfolio" when name is empty.
func (s *Service) FindPortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	if name == "" {
		name = defaultPortfolioName
	}

	portfolioList, err := s.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}

	for _, portfolio := range portfolioList {
		if portfolio.Name == name {
			return &portfolio, nil
		}
	}

	return nil, fmt.Errorf("portfolio %q not found", name)
}

func (s *Service) ListWallets(ctx context.Context, portfolioId, walletType string, symbols []string) ([]models.Wallet, error) {
	request := &wallets.ListWalletsRequest{
		PortfolioId: portfolioId,
		Type:        walletType,
		Symbols:     symbols,
	}

	response, err := s.walletsSvc.ListWallets(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("unable to list wallets: %w", err)
	}

	walletList := make([]models.Wallet, len(response.Wallets))
	for i, w := range response.Wallets {
		walletList[i] = models.Wallet{
			Id:     w.Id,
			Name:   w.Name,
			Symbol: w.Symbol,
			Type:   w.Type,
		}
	}

	return walletList, nil
}

// FindFundingWallet returns the wallet whose deposits fund the reward pool:
// the first wallet of walletType holding exactly symbol.
func (s *Service) FindFundingWallet(ctx context.Context, portfolioId, walletType, symbol string) (*models.WalletInfo, error) {
	walletList, err := s.ListWallets(ctx, portfolioId, walletType, []string{symbol})
	if err != nil {
		return nil, err
	}

	info, ok := selectFundingWallet(walletList, symbol)
	if !ok {
		return nil, fmt.Errorf("no %s wallet holding %s in portfolio %s", walletType, symbol, portfolioId)
	}

	zap.L().Info("Using funding wallet",
		zap.String("wallet_id", info.Id),
		zap.String("symbol", info.AssetSymbol))
	return info, nil
}

// selectFundingWallet picks the first wallet whose symbol matches, ignoring case.
func selectFundingWallet(walletList []models.Wallet, symbol string) (*models.WalletInfo, bool) {
	for _, w := range walletList {
		if strings.EqualFold(w.Symbol, symbol) {
			return &models.WalletInfo{Id: w.Id, AssetSymbol: strings.ToUpper(w.Symbol)}, true
		}
	}
	return nil, false
}

// ListWalletTransactions fetches deposits into a wallet since startTime.
func (s *Service) ListWalletTransactions(ctx context.Context, portfolioId, walletId string, startTime time.Time) ([]models.PrimeTransaction, error) {
	zap.L().Debug("Making Prime API request",
		zap.String("portfolio_id", portfolioId),
		zap.String("wallet_id", walletId),
		zap.String("start_time_formatted", startTime.UTC().Format("2006-01-02T15:04:05Z")))

	request := &transactions.ListWalletTransactionsRequest{
		PortfolioId: portfolioId,
		WalletId:    walletId,
		Start:       startTime,
		Types:       []string{"DEPOSIT"},
		Pagination: &model.PaginationParams{
			Limit: transactionPageLimit,
		},
	}

	response, err := s.transactionsSvc.ListWalletTransactions(ctx, request)
	if err != nil {
		zap.L().Error("Failed to list wallet transactions",
			zap.String("wallet_id", walletId),
			zap.Error(err))
		return nil, fmt.Errorf("unable to list wallet transactions: %w", err)
	}

	txs := make([]models.PrimeTransaction, 0, len(response.Transactions))
	for _, tx := range response.Transactions {
		txs = append(txs, models.PrimeTransaction{
			Id:        tx.Id,
			WalletId:  walletId,
			Type:      tx.Type,
			Status:    tx.Status,
			Symbol:    tx.Symbol,
			Amount:    tx.Amount,
			CreatedAt: tx.Created,
		})
	}

	zap.L().Debug("Prime API response received",
		zap.String("wallet_id", walletId),
		zap.Int("count", len(txs)))
	return txs, nil
}

package formance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy store.Store and store.HistoryReader.
var (
	_ store.Store         = (*Service)(nil)
	_ store.HistoryReader = (*Service)(nil)
)

// assetPrecision maps reserve asset symbols to their decimal precision.
// Curve tokens are always 6 decimals.
var assetPrecision = map[string]int{
	"USD":  2,
	"USDC": 6,
	"USDT": 6,
}

// RecordStore runs record-only units of work. The Formance ledger holds
// balances; entities, the platform and reward records live here.
type RecordStore interface {
	AtomicRecords(ctx context.Context, fn func(ctx context.Context, records store.Records) error) error
	Close()
}

// Service implements store.Store with balances on a Formance Stack ledger.
type Service struct {
	client  *v3.Formance
	ledger  string
	records RecordStore
}

// NewService creates a Formance-backed Store.
// It connects to the stack, creates the ledger if it doesn't already exist, and returns ready to use.
func NewService(ctx context.Context, cfg models.FormanceConfig, records RecordStore) (*Service, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if records == nil {
		return nil, fmt.Errorf("formance backend requires a record store")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = "bonding-rewards"
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	svc := &Service{client: client, ledger: cfg.LedgerName, records: records}

	if err := svc.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	zap.L().Info("Formance service initialized", zap.String("ledger", cfg.LedgerName))
	return svc, nil
}

// ensureLedger creates the ledger if it does not already exist.
func (s *Service) ensureLedger(ctx context.Context) error {
	_, err := s.client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: s.ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "bonding-rewards",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", s.ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", s.ledger))
	return nil
}

// Close releases the record store. The HTTP client needs no teardown.
func (s *Service) Close() {
	s.records.Close()
}

// ---------- helpers ----------

// formanceAsset returns the Formance UMN notation, e.g. "USDT/6".
// Curve token assets are base58 mint keys, which Formance rejects, so they
// map to a stable "TKN<hex>/6" code derived from the key.
func formanceAsset(asset string) string {
	if p, ok := assetPrecision[asset]; ok {
		return fmt.Sprintf("%s/%d", asset, p)
	}
	if isSymbol(asset) {
		return fmt.Sprintf("%s/6", asset)
	}
	sum := sha256.Sum256([]byte(asset))
	return fmt.Sprintf("TKN%s/6", strings.ToUpper(hex.EncodeToString(sum[:6])))
}

// isSymbol reports whether asset is already a valid Formance asset code.
func isSymbol(asset string) bool {
	if asset == "" || len(asset) > 17 {
		return false
	}
	for i, c := range asset {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}

// isNotFoundError checks whether a Formance SDK error is NOT_FOUND.
func isNotFoundError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumNotFound
}

// isAlreadyRevertedError checks whether a Formance SDK error is ALREADY_REVERT.
func isAlreadyRevertedError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumAlreadyRevert
}

// isInsufficientFundError checks whether a Formance SDK error is INSUFFICIENT_FUND.
func isInsufficientFundError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumInsufficientFund
}

func strPtr(s string) *string { return &s }
func ptrBool(v bool) *bool    { return &v }

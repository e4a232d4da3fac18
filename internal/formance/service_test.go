package formance

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"USDC", "USDC/6"},
		{"USD", "USD/2"},
		{"USDT", "USDT/6"},
		{"EURC", "EURC/6"}, // default precision
	}
	for _, tt := range tests {
		if got := formanceAsset(tt.symbol); got != tt.want {
			t.Errorf("formanceAsset(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestFormanceAsset_TokenMint(t *testing.T) {
	mint := keys.TokenMint("agent_one").String()

	got := formanceAsset(mint)
	if got != formanceAsset(mint) {
		t.Fatal("token asset code is not stable")
	}
	if !strings.HasPrefix(got, "TKN") || !strings.HasSuffix(got, "/6") {
		t.Fatalf("unexpected token asset %q", got)
	}
	if code := assetSymbol(got); !isSymbol(code) {
		t.Errorf("token code %q is not a valid asset code", code)
	}
	if other := formanceAsset(keys.TokenMint("agent_two").String()); other == got {
		t.Errorf("distinct mints share asset code %q", got)
	}
}

func TestAssetSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"USDC/6", "USDC"},
		{"USD/2", "USD"},
		{"TKNAB12CD34EF56/6", "TKNAB12CD34EF56"},
		{"PLAIN", "PLAIN"},
	}
	for _, tt := range tests {
		if got := assetSymbol(tt.input); got != tt.want {
			t.Errorf("assetSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"USDT/6": {Input: big.NewInt(500), Output: big.NewInt(200)},
		"USD/2":  {Input: big.NewInt(10), Output: big.NewInt(0), Balance: big.NewInt(7)},
	}

	if got := volumeBalance(vols, "USDT/6"); got.Int64() != 300 {
		t.Errorf("expected 300 from input-output, got %s", got)
	}
	if got := volumeBalance(vols, "USD/2"); got.Int64() != 7 {
		t.Errorf("expected explicit balance 7, got %s", got)
	}
	if got := volumeBalance(vols, "EURC/6"); got != nil {
		t.Errorf("expected nil for missing asset, got %s", got)
	}
}

func TestBuildScript(t *testing.T) {
	op := &models.Operation{Reference: "buy-1", Kind: "buy", EntityId: "agent_one", Actor: "alice"}
	legs := []leg{
		{legDebit, store.HolderAccount("alice"), "USDT", 1_000_000},
		{legCredit, store.Account("reserves:R1"), "USDT", 1_000_000},
		{legMint, store.HolderAccount("alice"), "USDT", 5},
		{legBurn, store.HolderAccount("alice"), "USDT", 2},
	}

	script, vars := buildScript("buy-1", op, legs)

	for _, want := range []string{
		"account $account_0",
		"source = $account_0\n  destination = @platform:transit",
		"source = @platform:transit allowing unbounded overdraft\n  destination = $account_1",
		"source = @world\n  destination = $account_2",
		"source = $account_3\n  destination = @world",
		`set_tx_meta("reference", $reference)`,
		`set_tx_meta("operation_kind", $operation_kind)`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if vars["amount_0"] != "1000000" || vars["asset_0"] != "USDT/6" || vars["account_1"] != "reserves:R1" {
		t.Errorf("unexpected vars %v", vars)
	}
	if vars["reference"] != "buy-1" || vars["actor"] != "alice" {
		t.Errorf("unexpected metadata vars %v", vars)
	}
}

func TestBuildScript_SkipsEmptyMetadata(t *testing.T) {
	script, vars := buildScript("ref", nil, []leg{{legMint, store.RewardPoolAccount(), "USDT", 1}})
	if strings.Contains(script, "operation_kind") {
		t.Errorf("expected no operation metadata without an operation:\n%s", script)
	}
	if _, ok := vars["entity_id"]; ok {
		t.Error("unexpected entity_id var")
	}
}

func TestTxn_BuffersLegs(t *testing.T) {
	alice := store.HolderAccount("alice")
	pool := store.RewardPoolAccount()
	tx := &txn{balances: map[balanceKey]uint64{
		{alice, "USDT"}: 100,
		{pool, "USDT"}:  0,
	}}
	ctx := context.Background()

	if err := tx.Debit(ctx, alice, "USDT", 40); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if err := tx.Credit(ctx, pool, "USDT", 40); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := tx.Debit(ctx, alice, "USDT", 61); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if bal, _ := tx.Balance(ctx, alice, "USDT"); bal != 60 {
		t.Errorf("expected buffered balance 60, got %d", bal)
	}
	if len(tx.legs) != 2 {
		t.Errorf("expected 2 buffered legs, got %d", len(tx.legs))
	}
}

func TestIsConflictError(t *testing.T) {
	// nil error should not be a conflict
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
	if isInsufficientFundError(errors.New("INSUFFICIENT_FUND")) {
		t.Error("plain errors are not SDK errors")
	}
}

func TestNewService_InvalidConfig(t *testing.T) {
	if _, err := NewService(context.Background(), models.FormanceConfig{}, nil); err == nil {
		t.Fatal("expected error for empty config")
	}
	cfg := models.FormanceConfig{StackURL: "http://localhost", ClientID: "id", ClientSecret: "secret"}
	if _, err := NewService(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error without record store")
	}
}

package codec

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
)

func sampleEntity() *models.Entity {
	return &models.Entity{
		Id:        "agent-7",
		Authority: "creator1",
		TokenMint: keys.TokenMint("agent-7"),
		Name:      "Agent Seven",
		Symbol:    "AG7",
		Uri:       "https://example.com/agent-7.json",
		Curve: models.BondingCurveParams{
			BasePrice:   1_000_000,
			CurveFactor: 2,
			MaxSupply:   1_000_000_000,
		},
		TotalSupply:       1_000_000_000,
		CirculatingSupply: 42,
		ReserveBalance:    99,
		Performance: models.PerformanceMetrics{
			TotalLikes:        10,
			TotalViews:        20,
			TotalComments:     30,
			TotalFollowers:    40,
			LastUpdated:       time.Unix(1_700_000_000, 0).UTC(),
			DailyLikes:        1,
			DailyViews:        2,
			DailyComments:     3,
			DailyNewFollowers: 4,
		},
		TotalRewardsEarned:     7,
		LastRewardDistribution: time.Unix(1_700_000_100, 0).UTC(),
	}
}

func TestEntity_EncodeDecode(t *testing.T) {
	in := sampleEntity()
	data, err := EncodeEntity(in)
	if err != nil {
		t.Fatalf("EncodeEntity failed: %v", err)
	}

	d := Discriminator(KindEntity)
	if string(data[:8]) != string(d[:]) {
		t.Fatal("expected entity discriminator prefix")
	}
	if data[8] != LayoutVersion {
		t.Fatalf("expected layout version %d, got %d", LayoutVersion, data[8])
	}

	out, err := DecodeEntity(data)
	if err != nil {
		t.Fatalf("DecodeEntity failed: %v", err)
	}
	if *out != *in {
		t.Errorf("decoded entity differs:\n got  %+v\n want %+v", out, in)
	}
}

func TestEntity_StringLayout(t *testing.T) {
	data, err := EncodeEntity(sampleEntity())
	if err != nil {
		t.Fatalf("EncodeEntity failed: %v", err)
	}

	// id follows the 9-byte header as a u32 length prefix
	n := binary.LittleEndian.Uint32(data[9:13])
	if n != uint32(len("agent-7")) {
		t.Fatalf("expected id length %d, got %d", len("agent-7"), n)
	}
	if got := string(data[13 : 13+n]); got != "agent-7" {
		t.Errorf("expected id bytes %q, got %q", "agent-7", got)
	}
}

func TestEncodeEntity_FieldBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *models.Entity)
	}{
		{"id", func(e *models.Entity) { e.Id = strings.Repeat("x", models.MaxEntityIdLen+1) }},
		{"name", func(e *models.Entity) { e.Name = strings.Repeat("x", models.MaxNameLen+1) }},
		{"symbol", func(e *models.Entity) { e.Symbol = strings.Repeat("x", models.MaxSymbolLen+1) }},
		{"uri", func(e *models.Entity) { e.Uri = strings.Repeat("x", models.MaxUriLen+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleEntity()
			tt.mutate(e)
			if _, err := EncodeEntity(e); !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("expected ErrFieldTooLong, got %v", err)
			}
		})
	}

	e := sampleEntity()
	e.Id = strings.Repeat("x", models.MaxEntityIdLen)
	e.Uri = strings.Repeat("u", models.MaxUriLen)
	if _, err := EncodeEntity(e); err != nil {
		t.Errorf("expected max-length fields to encode, got %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	platform, err := EncodePlatform(&models.Platform{Authority: "admin", ReserveAsset: "USDT", Oracle: "oracle"})
	if err != nil {
		t.Fatalf("EncodePlatform failed: %v", err)
	}

	if _, err := DecodeEntity(platform); !errors.Is(err, ErrDiscriminatorMismatch) {
		t.Errorf("expected ErrDiscriminatorMismatch, got %v", err)
	}
	if _, err := DecodePlatform(platform[:len(platform)-3]); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if _, err := DecodePlatform(append(append([]byte{}, platform...), 0)); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("expected ErrTrailingBytes, got %v", err)
	}

	bumped := append([]byte{}, platform...)
	bumped[8] = LayoutVersion + 1
	if _, err := DecodePlatform(bumped); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestPlatform_VersionTag(t *testing.T) {
	data, err := EncodePlatform(&models.Platform{
		Authority:       "admin",
		ReserveAsset:    "USDT",
		Oracle:          "oracle",
		DailyRewardPool: 200_000_000,
		TotalEntities:   3,
	})
	if err != nil {
		t.Fatalf("EncodePlatform failed: %v", err)
	}
	p, err := DecodePlatform(data)
	if err != nil {
		t.Fatalf("DecodePlatform failed: %v", err)
	}
	if p.Version != LayoutVersion {
		t.Errorf("expected version %d, got %d", LayoutVersion, p.Version)
	}
	if p.DailyRewardPool != 200_000_000 || p.TotalEntities != 3 {
		t.Errorf("unexpected platform %+v", p)
	}
}

func TestUserRewards_ZeroLastClaim(t *testing.T) {
	in := &models.UserRewards{User: "alice", Entity: keys.Entity("e1"), Pending: 5}
	data, err := EncodeUserRewards(in)
	if err != nil {
		t.Fatalf("EncodeUserRewards failed: %v", err)
	}
	out, err := DecodeUserRewards(data)
	if err != nil {
		t.Fatalf("DecodeUserRewards failed: %v", err)
	}
	if !out.LastClaim.IsZero() {
		t.Errorf("expected zero last claim, got %v", out.LastClaim)
	}
	if *out != *in {
		t.Errorf("decoded rewards differ: got %+v, want %+v", out, in)
	}
}

func TestKindOf(t *testing.T) {
	data, err := EncodeUserRewards(&models.UserRewards{User: "bob", Entity: keys.Entity("e1")})
	if err != nil {
		t.Fatalf("EncodeUserRewards failed: %v", err)
	}
	kind, err := KindOf(data)
	if err != nil {
		t.Fatalf("KindOf failed: %v", err)
	}
	if kind != KindUserRewards {
		t.Errorf("expected %s, got %s", KindUserRewards, kind)
	}
	if _, err := KindOf([]byte("short")); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

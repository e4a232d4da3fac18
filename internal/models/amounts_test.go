package models

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHuman(t *testing.T) {
	if got := Human(1_500_000, 6); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected 1.5, got %s", got)
	}
	if got := Units(math.MaxUint64); got.String() != "18446744073709551615" {
		t.Errorf("unexpected units %s", got)
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 1_000_000, false},
		{"0.000001", 1, false},
		{"2.5000009", 2_500_000, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"18446744073709.551616", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, 6)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseUnits(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseUnits(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUnits(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

package types

import (
	"errors"
	"math"
	"testing"
)

func TestAmountAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		want    Amount
		wantErr bool
	}{
		{"Simple", 100, 200, 300, false},
		{"Zero", 0, 0, 0, false},
		{"Negative operand", 100, -40, 60, false},
		{"Max edge", math.MaxInt64 - 1, 1, math.MaxInt64, false},
		{"Overflow", math.MaxInt64, 1, 0, true},
		{"Underflow", math.MinInt64, -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Add(tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrAmountOverflow) {
					t.Fatalf("expected ErrAmountOverflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountSubClampsAtZero(t *testing.T) {
	if got := Amount(100).Sub(60); got != 40 {
		t.Errorf("Sub: got %d, want 40", got)
	}
	if got := Amount(60).Sub(100); got != 0 {
		t.Errorf("Sub below zero: got %d, want 0", got)
	}
}

func TestAmountFormatMajor(t *testing.T) {
	tests := []struct {
		name     string
		amount   Amount
		decimals int
		want     string
	}{
		{"Two decimals", 4900, 2, "49.00"},
		{"Cents only", 5, 2, "0.05"},
		{"Zero decimals", 100, 0, "100"},
		{"Negative", -7550, 2, "-75.50"},
		{"Three decimals", 1234, 3, "1.234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.FormatMajor(tt.decimals); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	total, err := Sum(10, 20, 30)
	if err != nil {
		t.Fatal(err)
	}
	if total != 60 {
		t.Errorf("got %d, want 60", total)
	}

	if _, err := Sum(math.MaxInt64, 1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
}

package entity

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		amount   *uint256.Int
		decimals uint8
		want     string
	}{
		{uint256.NewInt(70_000_000), 6, "70.000000"},
		{uint256.NewInt(1), 6, "0.000001"},
		{uint256.NewInt(42), 0, "42"},
		{nil, 2, "0.00"},
		{uint256.MustFromDecimal("10000000000000000000000"), 18, "10000.000000000000000000"},
	}

	for _, tt := range tests {
		if got := FormatUnits(tt.amount, tt.decimals); got != tt.want {
			t.Errorf("FormatUnits(%v, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
		}
	}
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     string
		wantErr  error
	}{
		{in: "70", decimals: 6, want: "70000000"},
		{in: "70.5", decimals: 6, want: "70500000"},
		{in: "0.000001", decimals: 6, want: "1"},
		{in: "10000", decimals: 18, want: "10000000000000000000000"},
		{in: "0.0000001", decimals: 6, wantErr: ErrInvalidAmount},
		{in: "-1", decimals: 6, wantErr: ErrInvalidAmount},
		{in: "abc", decimals: 6, wantErr: ErrInvalidAmount},
		{in: "1e80", decimals: 0, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in, tt.decimals)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseUnits() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUnits() unexpected error = %v", err)
			}
			if got.Dec() != tt.want {
				t.Errorf("ParseUnits() = %s, want %s", got.Dec(), tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "60000000", want: "60000000"},
		{in: " 7 ", want: "7"},
		{in: "0", want: "0"},
		{in: "", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount() error = %v, want %v", err, ErrInvalidAmount)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount() unexpected error = %v", err)
			}
			if got.Dec() != tt.want {
				t.Errorf("ParseAmount() = %s, want %s", got.Dec(), tt.want)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"); err != nil {
		t.Errorf("ParseAddress() unexpected error = %v", err)
	}
	for _, in := range []string{"", "alice", "0x1234", "2791Bca1f2de4661ED88A30C99A7a9449Aa8417Z"} {
		if _, err := ParseAddress(in); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ParseAddress(%q) error = %v, want %v", in, err, ErrInvalidAddress)
		}
	}
}

func TestCall_Nested(t *testing.T) {
	call := Call{TxID: "tx", Sender: testBob, Value: uint256.NewInt(5)}
	nested := call.Nested(testUSDC, nil)

	if nested.TxID != "tx" || nested.Sender != testUSDC || nested.HasValue() {
		t.Errorf("Nested() = %+v", nested)
	}
	if !call.HasValue() {
		t.Error("HasValue() = false, want true")
	}
}

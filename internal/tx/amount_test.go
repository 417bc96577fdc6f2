package tx

import (
	"math/big"
	"testing"
)

func TestParseDecimalAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     string
		wantErr  bool
	}{
		{"standard faucet amount", "0.001", 18, "1000000000000000", false},
		{"one ether", "1", 18, "1000000000000000000", false},
		{"one and a half", "1.5", 18, "1500000000000000000", false},
		{"leading dot", ".5", 18, "500000000000000000", false},
		{"trailing dot", "1.", 18, "1000000000000000000", false},
		{"full precision", "0.000000000000000001", 18, "1", false},
		{"zero", "0", 18, "0", false},
		{"whitespace trimmed", " 0.001 ", 18, "1000000000000000", false},
		{"six decimals token", "2.5", 6, "2500000", false},
		{"empty", "", 18, "", true},
		{"negative", "-1", 18, "", true},
		{"letters", "abc", 18, "", true},
		{"two dots", "1.2.3", 18, "", true},
		{"too many fractional digits", "0.0000000000000000001", 18, "", true},
		{"scientific notation", "1e18", 18, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalAmount(tt.input, tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalAmount(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalAmount(%q) error: %v", tt.input, err)
			}
			want, _ := new(big.Int).SetString(tt.want, 10)
			if got.Cmp(want) != 0 {
				t.Errorf("ParseDecimalAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDecimalAmount(t *testing.T) {
	tests := []struct {
		name     string
		wei      string
		decimals int
		want     string
	}{
		{"standard faucet amount", "1000000000000000", 18, "0.001"},
		{"one ether", "1000000000000000000", 18, "1"},
		{"one and a half", "1500000000000000000", 18, "1.5"},
		{"smallest unit", "1", 18, "0.000000000000000001"},
		{"zero", "0", 18, "0"},
		{"sum of thousandths", "4000000000000000", 18, "0.004"},
		{"six decimals token", "2500000", 6, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, _ := new(big.Int).SetString(tt.wei, 10)
			if got := FormatDecimalAmount(wei, tt.decimals); got != tt.want {
				t.Errorf("FormatDecimalAmount(%s, %d) = %q, want %q", tt.wei, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestParseDecimalAmountExactness(t *testing.T) {
	// 0.001 is not representable in binary floating point; the exact-integer
	// path must produce precisely 10^15 with no rounding residue.
	got, err := ParseDecimalAmount("0.001", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
	if got.Cmp(want) != 0 {
		t.Errorf("got %s, want exactly 10^15", got)
	}
}

package oracle

import "testing"

func TestQuoteDecimal(t *testing.T) {
	cases := []struct {
		name  string
		quote Quote
		want  float64
	}{
		{"conventional 8 decimals", Quote{Price: 12345678901, Expo: -8}, 123.45678901},
		{"5 decimals", Quote{Price: 12345, Expo: -5}, 0.12345},
		{"no exponent", Quote{Price: 42, Expo: 0}, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.quote.Decimal(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

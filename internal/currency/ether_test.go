package currency

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "default tip",
			input: "0.01",
			want:  "10000000000000000",
		}, {
			name:  "one ether",
			input: "1",
			want:  "1000000000000000000",
		}, {
			name:  "smallest unit",
			input: "0.000000000000000001",
			want:  "1",
		}, {
			name:  "spaces around",
			input: " 0.5 ",
			want:  "500000000000000000",
		}, {
			name:    "zero",
			input:   "0",
			wantErr: true,
		}, {
			name:    "negative",
			input:   "-0.01",
			wantErr: true,
		}, {
			name:    "empty",
			input:   "",
			wantErr: true,
		}, {
			name:    "not a number",
			input:   "ten",
			wantErr: true,
		}, {
			name:    "too much precision",
			input:   "0.0000000000000000001",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEther(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromWei(t *testing.T) {
	require.True(t, FromWei(nil).IsZero())
	require.True(t, FromWei(big.NewInt(0)).IsZero())

	wei, ok := new(big.Int).SetString("10000000000000000", 10)
	require.True(t, ok)
	require.True(t, FromWei(wei).Equal(decimal.RequireFromString("0.01")))
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "1.5", "0.000000000000000001", "123456.789"} {
		amount, err := decimal.NewFromString(s)
		require.NoError(t, err)

		wei, err := ToWei(amount)
		require.NoError(t, err)
		require.True(t, FromWei(wei).Equal(amount), s)
	}
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"0.01", "0.01"},
		{"0.019", "0.01"},
		{"1.999", "1.99"},
		{"12.3", "12.3"},
	}
	for _, tt := range tests {
		amount, err := decimal.NewFromString(tt.input)
		require.NoError(t, err)
		require.Equal(t, tt.want, FormatBalance(amount))
	}
}

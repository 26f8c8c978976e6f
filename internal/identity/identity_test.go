package identity

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
		wantErr error
	}{
		{
			name:    "lowercase",
			address: "0x8ba1f109551bd432803012645ac136ddd64dba72",
			want:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		}, {
			name:    "uppercase",
			address: "0x8BA1F109551BD432803012645AC136DDD64DBA72",
			want:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		}, {
			name:    "mixed case",
			address: "0x8Ba1F109551bd432803012645aC136ddd64dbA72",
			want:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		}, {
			name:    "surrounding spaces",
			address: "  0x8ba1f109551bd432803012645ac136ddd64dba72 ",
			want:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		}, {
			name:    "missing prefix",
			address: "8ba1f109551bd432803012645ac136ddd64dba72",
			want:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		}, {
			name:    "too short",
			address: "0x8ba1f109551bd432",
			wantErr: ErrInvalidAddressFormat,
		}, {
			name:    "not hex",
			address: "0xZZa1f109551bd432803012645ac136ddd64dba72",
			wantErr: ErrInvalidAddressFormat,
		}, {
			name:    "empty",
			address: "",
			wantErr: ErrInvalidAddressFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.address)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestEqual(t *testing.T) {
	lower, err := Normalize("0x8ba1f109551bd432803012645ac136ddd64dba72")
	require.NoError(t, err)
	upper, err := Normalize("0x8BA1F109551BD432803012645AC136DDD64DBA72")
	require.NoError(t, err)
	other, err := Normalize("0x71c7656ec7ab88b098defb751b7401b5f6d8976f")
	require.NoError(t, err)

	require.True(t, Equal(lower, upper))
	require.True(t, Equal(lower, upper.WithName("vitalik.eth")))
	require.False(t, Equal(lower, other))
}

func TestIsOwner(t *testing.T) {
	viewed, err := Normalize("0x8ba1f109551bd432803012645ac136ddd64dba72")
	require.NoError(t, err)
	stranger, err := Normalize("0x71c7656ec7ab88b098defb751b7401b5f6d8976f")
	require.NoError(t, err)

	require.False(t, IsOwner(nil, viewed), "no wallet session is never the owner")
	require.True(t, IsOwner(&viewed, viewed))

	mixed, err := Normalize("0x8BA1F109551bd432803012645AC136ddd64dba72")
	require.NoError(t, err)
	require.True(t, IsOwner(&mixed, viewed))
	require.False(t, IsOwner(&stranger, viewed))
}

func TestErrorIsWrapped(t *testing.T) {
	_, err := Normalize("nope")
	require.True(t, errors.Is(err, ErrInvalidAddressFormat))
	require.Contains(t, err.Error(), "nope")
}

package identity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// errors
var (
	ErrInvalidAddressFormat = errors.New("invalid address format")
)

// Identity - normalized account address, optionally paired with a display name
// resolved by an external collaborator. Two identities are equal iff their
// normalized addresses are equal, whatever the display case of the input or
// the presence of a name.
type Identity struct {
	address common.Address
	name    string
}

// Normalize - parses and normalizes an address string. The returned identity
// carries the checksummed form of the address.
func Normalize(address string) (Identity, error) {
	trimmed := strings.TrimSpace(address)
	if !common.IsHexAddress(trimmed) {
		return Identity{}, errors.Wrap(ErrInvalidAddressFormat, address)
	}
	return Identity{
		address: common.HexToAddress(trimmed),
	}, nil
}

// FromAddress -
func FromAddress(address common.Address) Identity {
	return Identity{address: address}
}

// WithName - returns a copy of the identity paired with a display name.
func (id Identity) WithName(name string) Identity {
	id.name = name
	return id
}

// Address -
func (id Identity) Address() common.Address {
	return id.address
}

// Name - externally resolved display name, empty when none was resolved.
func (id Identity) Name() string {
	return id.name
}

// String - checksummed hex form of the address.
func (id Identity) String() string {
	return id.address.Hex()
}

// IsZero -
func (id Identity) IsZero() bool {
	return id.address == (common.Address{})
}

// Equal - compares normalized forms only; display names do not take part.
func Equal(a, b Identity) bool {
	return a.address == b.address
}

// IsOwner - reports whether the connected identity owns the viewed one.
// Always false when there is no wallet session.
func IsOwner(connected *Identity, viewed Identity) bool {
	if connected == nil {
		return false
	}
	return Equal(*connected, viewed)
}

package types

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// AddressLength is the byte length of a customer identity.
const AddressLength = 20

// Address identifies a customer or administrator account.
type Address [AddressLength]byte

// AddressFromBytes converts a raw byte slice into an Address. The slice must
// be exactly AddressLength bytes long.
func AddressFromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, fmt.Errorf("types: invalid address length %d", len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool { return a == Address{} }

// String returns the hex encoding of the address.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// MarshalText implements encoding.TextMarshaler so addresses serialize as hex
// strings in JSON documents and map keys.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(a[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("types: invalid address encoding: %w", err)
	}
	if len(decoded) != AddressLength {
		return fmt.Errorf("types: invalid address length %d", len(decoded))
	}
	copy(a[:], decoded)
	return nil
}

// Account holds the spendable balance for a single identity. Balances are
// expressed in the smallest denomination of the ledger's single currency unit
// and cannot represent negative amounts.
type Account struct {
	Balance *uint256.Int `json:"balance"`
}

// EnsureAccount returns a usable account with a non-nil balance, allocating a
// fresh one when the input is nil.
func EnsureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Balance: uint256.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = uint256.NewInt(0)
	}
	return acc
}

// Clone returns a deep copy of the account so callers can mutate the copy
// without affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := &Account{Balance: uint256.NewInt(0)}
	if a.Balance != nil {
		clone.Balance = new(uint256.Int).Set(a.Balance)
	}
	return clone
}

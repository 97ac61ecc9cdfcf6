// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package address provides the 32-byte identities used for ledger accounts,
// their base58 text form, and deterministic program-derived addresses.
package address

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Size is the length in bytes of an address
const Size = 32

var (
	ErrInvalidLength = errors.New("invalid address length")
	ErrInvalidBase58 = errors.New("invalid base58 address")
)

// Address identifies an account on the ledger. Signing identities are
// ed25519 public keys; program-derived addresses are guaranteed to be off
// the curve and therefore have no private key.
//
//nolint:recvcheck
type Address [Size]byte

// Zero is the empty address
var Zero Address

// New returns an address from the given bytes, which must be exactly Size long
func New(b []byte) (Address, error) {
	var ret Address
	if len(b) != Size {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidLength,
			Size,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// MustParse is like Parse but panics on error. It is intended for
// well-known constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse decodes a base58 address string
func Parse(s string) (Address, error) {
	if s == "" {
		return Zero, ErrInvalidBase58
	}
	decoded := base58.Decode(s)
	if len(decoded) == 0 {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidBase58, s)
	}
	return New(decoded)
}

// Bytes returns a copy of the raw address bytes
func (a Address) Bytes() []byte {
	ret := make([]byte, Size)
	copy(ret, a[:])
	return ret
}

// IsZero returns true for the empty address
func (a Address) IsZero() bool {
	return a == Zero
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	tmp, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// Value stores the address as raw bytes in the metadata database
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

func (a *Address) Scan(val any) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	tmp, err := New(v)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

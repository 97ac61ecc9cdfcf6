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

// Package keystore manages the ed25519 identities that sign ledger
// transactions. Keys are stored in JSON envelope files readable only by
// their owner.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/blinklabs-io/boarding/address"
)

// Common errors returned by keystore operations.
var (
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrKeyFileExists    = errors.New("key file already exists")
	ErrInvalidKey       = errors.New("invalid key")
)

// Identity is an ed25519 signing key and the address it controls
type Identity struct {
	privateKey  ed25519.PrivateKey
	description string
	address     address.Address
}

// NewIdentity creates an identity from a 32-byte ed25519 seed
func NewIdentity(seed []byte, description string) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"%w: expected %d byte seed, got %d",
			ErrInvalidKey,
			ed25519.SeedSize,
			len(seed),
		)
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	pubKey, ok := privateKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidKey
	}
	addr, err := address.FromPublicKey(pubKey)
	if err != nil {
		return nil, err
	}
	return &Identity{
		privateKey:  privateKey,
		description: description,
		address:     addr,
	}, nil
}

// GenerateIdentity creates a new random identity
func GenerateIdentity(description string) (*Identity, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate key seed: %w", err)
	}
	return NewIdentity(seed, description)
}

// Address returns the address controlled by the identity
func (i *Identity) Address() address.Address {
	return i.address
}

// Description returns the free-form description stored with the key
func (i *Identity) Description() string {
	return i.description
}

// Sign signs msg with the identity's private key
func (i *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(i.privateKey, msg)
}

func (i *Identity) seed() []byte {
	return i.privateKey.Seed()
}

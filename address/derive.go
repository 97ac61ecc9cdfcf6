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

package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// MaxSeeds is the maximum number of seeds accepted for derivation
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedsExceeded      = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("seed too long")
	ErrOnCurve               = errors.New("derived address is on the ed25519 curve")
	ErrNoViableBump          = errors.New("unable to find a viable bump seed")
)

// IsOnCurve reports whether the address decodes to a valid ed25519 point,
// i.e. whether it could be a signing identity. Non-canonical encodings of
// valid points are accepted, matching common ed25519 implementations.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// CreateProgramAddress hashes the seeds with the program ID and returns the
// resulting address. It fails with ErrOnCurve if the hash is a valid public key.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrMaxSeedsExceeded
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Zero, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	var ret Address
	copy(ret[:], h.Sum(nil))
	if IsOnCurve(ret) {
		return Zero, ErrOnCurve
	}
	return ret, nil
}

// FindProgramAddress searches bump values from 255 down to 0 and returns the
// first off-curve address along with its bump. The result depends only on the
// inputs.
func FindProgramAddress(
	seeds [][]byte,
	programID Address,
) (Address, uint8, error) {
	// Leave room for the bump seed
	if len(seeds) >= MaxSeeds {
		return Zero, 0, ErrMaxSeedsExceeded
	}
	tmpSeeds := make([][]byte, len(seeds)+1)
	copy(tmpSeeds, seeds)
	for bump := 255; bump >= 0; bump-- {
		tmpSeeds[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(tmpSeeds, programID)
		if err == nil {
			return addr, uint8(bump), nil //nolint:gosec
		}
		if !errors.Is(err, ErrOnCurve) {
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}

// VerifyProgramAddress checks that expected is the address derived from the
// seeds, program ID and bump.
func VerifyProgramAddress(
	expected Address,
	seeds [][]byte,
	bump uint8,
	programID Address,
) error {
	tmpSeeds := make([][]byte, len(seeds)+1)
	copy(tmpSeeds, seeds)
	tmpSeeds[len(seeds)] = []byte{bump}
	addr, err := CreateProgramAddress(tmpSeeds, programID)
	if err != nil {
		return err
	}
	if addr != expected {
		return fmt.Errorf(
			"derived address %s does not match %s",
			addr,
			expected,
		)
	}
	return nil
}

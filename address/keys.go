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
	"crypto/ed25519"
)

// FromPublicKey returns the address of an ed25519 public key
func FromPublicKey(pub ed25519.PublicKey) (Address, error) {
	return New(pub)
}

// PublicKey returns the address as an ed25519 public key
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a.Bytes())
}

// Verify checks an ed25519 signature made by this address over msg. Program
// derived addresses never verify.
func (a Address) Verify(msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(a.PublicKey(), msg, sig)
}
